// Package business is the composition root: it assembles the credential
// store, gateway, API client and the session and product stores from a
// loaded configuration, and hosts the long-running refresh job.
package business

import (
	"context"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/internal/api"
	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/credential"
	"github.com/openinv/invctl/internal/gateway"
	"github.com/openinv/invctl/internal/products"
	"github.com/openinv/invctl/internal/session"
)

// App is the fully wired client stack. One App talks to one backend with
// one persisted credential.
type App struct {
	Config   *config.Config
	API      *api.Client
	Gateway  *gateway.Gateway
	Session  *session.Store
	Products *products.Store
}

func NewApp(cfg *config.Config, opts ...session.Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	credPath, err := cfg.Auth.CredentialPath()
	if err != nil {
		return nil, fmt.Errorf("resolving credential path: %w", err)
	}
	creds := credential.NewFileStore(credPath, cfg.API.BaseURL)

	// The gateway signals into the session store, which exists only after
	// the gateway; the indirection breaks the construction cycle.
	var sess *session.Store
	gw, err := gateway.New(cfg, creds, nil,
		gateway.WithSessionInvalidated(func(ctx context.Context) {
			if sess != nil {
				sess.Invalidated(ctx)
			}
		}))
	if err != nil {
		return nil, fmt.Errorf("building gateway: %w", err)
	}

	client := api.New(gw, cfg.Cache.TTL, cfg.Cache.Cleanup)
	sess = session.NewStore(cfg, client, creds, opts...)

	return &App{
		Config:   cfg,
		API:      client,
		Gateway:  gw,
		Session:  sess,
		Products: products.NewStore(client, cfg.Products.PageSize),
	}, nil
}

// RefreshOnce renews the access token when its expiry falls inside the
// configured window. Returns true when a refresh happened.
func (a *App) RefreshOnce(ctx context.Context) (bool, error) {
	refreshed, err := a.Gateway.RefreshIfExpiring(ctx, a.Config.Auth.RefreshWindow)
	if err != nil {
		return false, fmt.Errorf("refreshing token: %w", err)
	}
	if refreshed {
		slogctx.Info(ctx, "Access token refreshed")
	} else {
		slogctx.Debug(ctx, "Access token still fresh, skipping refresh")
	}
	return refreshed, nil
}

// RefreshLoop keeps the stored access token fresh until the context ends.
// Individual failures are logged and retried on the next tick; an
// invalidated session ends the loop since there is nothing left to renew.
func (a *App) RefreshLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.RefreshOnce(ctx); err != nil {
			if a.Session.State().Status == session.StatusAnonymous {
				return err
			}
			slogctx.Error(ctx, "Failed to refresh token", "error", err)
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
