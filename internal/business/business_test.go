package business_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinv/invctl/internal/api"
	"github.com/openinv/invctl/internal/business"
	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/serviceerr"
	"github.com/openinv/invctl/internal/session"
)

// stackBackend is a minimal inventory API: one user, one product, a refresh
// endpoint that can be switched to fail.
type stackBackend struct {
	mu          sync.Mutex
	failRefresh bool
	validToken  string
}

func (b *stackBackend) token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validToken
}

func (b *stackBackend) setToken(token string) {
	b.mu.Lock()
	b.validToken = token
	b.mu.Unlock()
}

func (b *stackBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  b.token(),
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
			User:         api.User{ID: 1, Email: "admin@example.com", Role: api.RoleAdmin},
		})
	})

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.failRefresh
		b.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid refresh token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  b.token(),
			"refresh_token": "refresh-2",
		})
	})

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.token() {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.ProductList{
			Items:      []api.Product{{ID: 1, SKU: "BOLT-M8", Name: "Hex Bolt M8"}},
			Total:      1,
			TotalPages: 1,
		})
	})

	return mux
}

func newApp(t *testing.T, b *stackBackend, opts ...session.Option) *business.App {
	t.Helper()

	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.API.BaseURL = srv.URL
	cfg.Auth.RefreshMode = config.RefreshModeBody
	cfg.Auth.CredentialFile = filepath.Join(t.TempDir(), "credentials.json")

	app, err := business.NewApp(cfg, opts...)
	require.NoError(t, err)
	return app
}

func TestApp_LoginThenListProducts(t *testing.T) {
	app := newApp(t, &stackBackend{validToken: "access-1"})

	_, err := app.Session.Login(t.Context(), "admin@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, app.Products.Fetch(t.Context()))
	state := app.Products.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "BOLT-M8", state.Items[0].SKU)
}

func TestApp_InvalidationReachesSessionStore(t *testing.T) {
	b := &stackBackend{validToken: "access-1", failRefresh: true}
	app := newApp(t, b)

	_, err := app.Session.Login(t.Context(), "admin@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, session.StatusAuthenticated, app.Session.State().Status)

	// the backend stops accepting the token and refuses to refresh
	b.setToken("rotated-elsewhere")

	err = app.Products.Fetch(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, serviceerr.ErrSessionInvalid)

	// the gateway's signal travelled through the wiring
	assert.Equal(t, session.StatusAnonymous, app.Session.State().Status)
}

func TestApp_RefreshOnce(t *testing.T) {
	app := newApp(t, &stackBackend{validToken: "access-1"})

	_, err := app.Session.Login(t.Context(), "admin@example.com", "secret")
	require.NoError(t, err)

	// the login token carries no exp claim, which counts as expiring
	refreshed, err := app.RefreshOnce(t.Context())
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestApp_RefreshLoopStopsOnCancel(t *testing.T) {
	app := newApp(t, &stackBackend{validToken: "access-1"})

	_, err := app.Session.Login(t.Context(), "admin@example.com", "secret")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- app.RefreshLoop(ctx, time.Hour)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh loop did not stop after cancellation")
	}
}

func TestApp_RejectsInvalidConfig(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Auth.RefreshMode = "carrier-pigeon"

	_, err = business.NewApp(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refreshMode")
}
