// Package gateway sends every outbound API call: it attaches the current
// bearer credential at send time, recovers from an expired access token by
// refreshing and re-sending exactly once, and escalates a failed refresh to
// a session-invalidated signal. Callers never observe the intermediate 401.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/credential"
	"github.com/openinv/invctl/internal/serviceerr"
)

// InvalidatedFunc is called once a refresh has failed and the stored
// credential has been cleared. The application uses it to send the user
// back to the login entry point.
type InvalidatedFunc func(ctx context.Context)

type Gateway struct {
	baseURL *url.URL
	client  *http.Client
	creds   credential.Store

	mode       config.RefreshMode
	cookieName string

	refreshGroup  singleflight.Group
	onInvalidated InvalidatedFunc
}

type Option func(*Gateway)

// WithSessionInvalidated registers the handler fired when a credential
// refresh fails terminally.
func WithSessionInvalidated(fn InvalidatedFunc) Option {
	return func(g *Gateway) { g.onInvalidated = fn }
}

func New(cfg *config.Config, creds credential.Store, client *http.Client, opts ...Option) (*Gateway, error) {
	baseURL, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.API.Timeout}
	}

	g := &Gateway{
		baseURL:       baseURL,
		client:        client,
		creds:         creds,
		mode:          cfg.Auth.RefreshMode,
		cookieName:    cfg.Auth.RefreshCookieName,
		onInvalidated: func(context.Context) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	if err := initMeters(); err != nil {
		return nil, fmt.Errorf("initialising gateway meters: %w", err)
	}

	return g, nil
}

// Do executes the request. A 401 on the first attempt triggers a coalesced
// credential refresh and a single re-send; the caller only ever sees the
// final response or a classified error.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	return g.do(ctx, req.withAttempt(1))
}

func (g *Gateway) do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "gateway.request", trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("url.path", req.Path),
		attribute.Int("gateway.attempt", req.Attempt()),
	))
	defer span.End()

	resp, err := g.send(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.NoRetry {
		if req.Attempt() >= 2 {
			// Already retried once; never refresh again for this request.
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path,
				serviceerr.FromStatus(resp.StatusCode, errorDetail(resp.Body)))
		}

		slogctx.Debug(ctx, "Access token rejected, refreshing", "path", req.Path)
		if err := g.Refresh(ctx); err != nil {
			// Refresh has already torn the session down.
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}

		retryCounter.Add(ctx, 1)
		return g.do(ctx, req.withAttempt(2))
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path,
			serviceerr.FromStatus(resp.StatusCode, errorDetail(resp.Body)))
	}

	return resp, nil
}

// send performs one HTTP round trip. The credential is re-read from the
// store on every call so a retry always carries the latest token.
func (g *Gateway) send(ctx context.Context, req Request) (*Response, error) {
	body, contentType, err := req.payload()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, g.requestURL(req), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	cred, err := g.creds.Load(ctx)
	switch {
	case err == nil:
		httpReq.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	case errors.Is(err, serviceerr.ErrNoCredential):
		// unauthenticated call, e.g. login
	default:
		return nil, fmt.Errorf("loading credential: %w", err)
	}

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", serviceerr.ErrNetwork)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       payload,
	}, nil
}

func (g *Gateway) requestURL(req Request) string {
	u := *g.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + req.Path
	if req.Query != nil {
		u.RawQuery = req.Query.Encode()
	}
	return u.String()
}

// RefreshCookie extracts the refresh cookie value from a response's
// Set-Cookie headers. The second return is false when the response did not
// touch the cookie; an empty value with true means the backend deleted it.
func RefreshCookie(header http.Header, name string) (string, bool) {
	resp := http.Response{Header: header}
	for _, c := range resp.Cookies() {
		if c.Name != name {
			continue
		}
		if c.MaxAge < 0 {
			return "", true
		}
		return c.Value, true
	}
	return "", false
}

// invalidate clears the stored credential and signals the application that
// the session cannot be recovered.
func (g *Gateway) invalidate(ctx context.Context, cause error) error {
	slogctx.Warn(ctx, "Credential refresh failed, invalidating session", "error", cause)

	if err := g.creds.Clear(ctx); err != nil {
		slogctx.Error(ctx, "Could not clear stored credential", "error", err)
	}
	g.onInvalidated(ctx)

	return fmt.Errorf("refreshing credential: %w", serviceerr.ErrSessionInvalid)
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%v: %w", err, serviceerr.ErrNetwork)
}
