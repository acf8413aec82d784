package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/credential"
	"github.com/openinv/invctl/internal/serviceerr"
)

const refreshPath = "/auth/refresh"

// Refresh mints a new access token from the stored refresh credential and
// persists it. Concurrent callers are coalesced into a single in-flight
// refresh; every waiter observes the same outcome. A failed refresh clears
// the stored credential and fires the session-invalidated handler, so the
// session is either fully recovered or fully torn down.
func (g *Gateway) Refresh(ctx context.Context) error {
	_, err, _ := g.refreshGroup.Do("refresh", func() (any, error) {
		if err := g.doRefresh(ctx); err != nil {
			return nil, g.invalidate(ctx, err)
		}
		refreshCounter.Add(ctx, 1)
		return nil, nil
	})
	return err
}

// RefreshIfExpiring refreshes only when the access token's expiry falls
// inside the window. Returns true when a refresh was performed.
func (g *Gateway) RefreshIfExpiring(ctx context.Context, window time.Duration) (bool, error) {
	cred, err := g.creds.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading credential: %w", err)
	}
	if !cred.ExpiresWithin(window) {
		return false, nil
	}
	return true, g.Refresh(ctx)
}

func (g *Gateway) doRefresh(ctx context.Context) error {
	cred, err := g.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}

	httpReq, err := g.refreshRequest(ctx, cred)
	if err != nil {
		return err
	}

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading refresh response: %w", serviceerr.ErrNetwork)
	}

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh endpoint: %w",
			serviceerr.FromStatus(httpResp.StatusCode, errorDetail(payload)))
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(payload, &tokens); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("refresh endpoint returned no access token")
	}

	newCred := credential.Credential{
		AccessToken: tokens.AccessToken,
		ObtainedAt:  time.Now(),
	}
	switch g.mode {
	case config.RefreshModeBody:
		// rotated refresh token, or the old one if the backend kept it
		newCred.RefreshToken = tokens.RefreshToken
		if newCred.RefreshToken == "" {
			newCred.RefreshToken = cred.RefreshToken
		}
	case config.RefreshModeCookie:
		if rotated, ok := RefreshCookie(httpResp.Header, g.cookieName); ok {
			newCred.RefreshCookie = rotated
		} else {
			newCred.RefreshCookie = cred.RefreshCookie
		}
	}

	if err := g.creds.Save(ctx, newCred); err != nil {
		return fmt.Errorf("persisting refreshed credential: %w", err)
	}

	slogctx.Info(ctx, "Refreshed access token")

	return nil
}

func (g *Gateway) refreshRequest(ctx context.Context, cred credential.Credential) (*http.Request, error) {
	endpoint := strings.TrimSuffix(g.baseURL.String(), "/") + refreshPath

	var body io.Reader
	if g.mode == config.RefreshModeBody {
		if cred.RefreshToken == "" {
			return nil, fmt.Errorf("no refresh token stored: %w", serviceerr.ErrNoCredential)
		}
		form := url.Values{}
		form.Set("refresh_token", cred.RefreshToken)
		body = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}

	switch g.mode {
	case config.RefreshModeBody:
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case config.RefreshModeCookie:
		if cred.RefreshCookie == "" {
			return nil, fmt.Errorf("no refresh cookie stored: %w", serviceerr.ErrNoCredential)
		}
		httpReq.AddCookie(&http.Cookie{Name: g.cookieName, Value: cred.RefreshCookie})
	}

	return httpReq, nil
}
