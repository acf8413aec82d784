package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinv/invctl/internal/api"
	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/credential"
	credentialmock "github.com/openinv/invctl/internal/credential/mock"
	"github.com/openinv/invctl/internal/gateway"
	"github.com/openinv/invctl/internal/serviceerr"
	"github.com/openinv/invctl/internal/session"
)

type authBackend struct {
	meCalls     atomic.Int32
	logoutCalls atomic.Int32
	failLogout  bool
	rejectMe    bool
	setCookie   bool
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("password") != "correct horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
			return
		}
		if b.setCookie {
			http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "cookie-refresh", HttpOnly: true})
		}
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
			User:         api.User{ID: 1, Email: "admin@example.com", Role: api.RoleAdmin},
		})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls.Add(1)
		if b.rejectMe || r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.User{ID: 1, Email: "admin@example.com", Role: api.RoleAdmin})
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls.Add(1)
		if b.failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})
	})

	// refresh always fails so auth errors escalate instead of recovering
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid refresh token"})
	})

	return mux
}

func newStore(t *testing.T, b *authBackend, mode config.RefreshMode, creds *credentialmock.Store, opts ...session.Option) *session.Store {
	t.Helper()

	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		API: config.API{BaseURL: srv.URL},
		Auth: config.Auth{
			RefreshMode:       mode,
			RefreshCookieName: "refresh_token",
		},
	}

	gw, err := gateway.New(cfg, creds, nil)
	require.NoError(t, err)

	return session.NewStore(cfg, api.New(gw, time.Minute, time.Minute), creds, opts...)
}

func TestStore_Login(t *testing.T) {
	tests := []struct {
		name       string
		mode       config.RefreshMode
		setCookie  bool
		password   string
		wantErr    bool
		wantStatus session.Status
		check      func(t *testing.T, cred credential.Credential)
	}{
		{
			name:       "Body mode stores refresh token",
			mode:       config.RefreshModeBody,
			password:   "correct horse",
			wantStatus: session.StatusAuthenticated,
			check: func(t *testing.T, cred credential.Credential) {
				t.Helper()
				assert.Equal(t, "access-1", cred.AccessToken)
				assert.Equal(t, "refresh-1", cred.RefreshToken)
				assert.Empty(t, cred.RefreshCookie)
			},
		},
		{
			name:       "Cookie mode stores refresh cookie",
			mode:       config.RefreshModeCookie,
			setCookie:  true,
			password:   "correct horse",
			wantStatus: session.StatusAuthenticated,
			check: func(t *testing.T, cred credential.Credential) {
				t.Helper()
				assert.Equal(t, "access-1", cred.AccessToken)
				assert.Equal(t, "cookie-refresh", cred.RefreshCookie)
				assert.Empty(t, cred.RefreshToken)
			},
		},
		{
			name:       "Rejected password stores nothing and lands anonymous",
			mode:       config.RefreshModeBody,
			password:   "wrong",
			wantErr:    true,
			wantStatus: session.StatusAnonymous,
			check: func(t *testing.T, cred credential.Credential) {
				t.Helper()
				assert.True(t, cred.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := credentialmock.NewStore()
			store := newStore(t, &authBackend{setCookie: tt.setCookie}, tt.mode, creds)

			user, err := store.Login(t.Context(), "admin@example.com", tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, serviceerr.ErrAuthExpired)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "admin@example.com", user.Email)
			}

			assert.Equal(t, tt.wantStatus, store.State().Status)
			tt.check(t, creds.Current())
		})
	}
}

func TestStore_LogoutClearsUnconditionally(t *testing.T) {
	b := &authBackend{failLogout: true}
	creds := credentialmock.NewStore(credentialmock.WithCredential(credential.Credential{
		AccessToken: "access-1",
	}))
	store := newStore(t, b, config.RefreshModeBody, creds)

	err := store.Logout(t.Context())

	// the server error is logged, not surfaced, and the credential is gone
	require.NoError(t, err)
	assert.EqualValues(t, 1, b.logoutCalls.Load())
	assert.True(t, creds.Current().IsZero())
	assert.Equal(t, session.StatusAnonymous, store.State().Status)
}

func TestStore_CheckAuth(t *testing.T) {
	t.Run("NoCredentialIsAnonymousOffline", func(t *testing.T) {
		b := &authBackend{}
		creds := credentialmock.NewStore()
		store := newStore(t, b, config.RefreshModeBody, creds)

		state, err := store.CheckAuth(t.Context())
		require.NoError(t, err)
		assert.Equal(t, session.StatusAnonymous, state.Status)
		assert.EqualValues(t, 0, b.meCalls.Load(), "must not touch the network")
	})

	t.Run("ValidCredentialIsAuthenticated", func(t *testing.T) {
		creds := credentialmock.NewStore(credentialmock.WithCredential(credential.Credential{
			AccessToken: "access-1",
		}))
		store := newStore(t, &authBackend{}, config.RefreshModeBody, creds)

		state, err := store.CheckAuth(t.Context())
		require.NoError(t, err)
		assert.Equal(t, session.StatusAuthenticated, state.Status)
		require.NotNil(t, state.User)
		assert.Equal(t, "admin@example.com", state.User.Email)
	})

	t.Run("RejectedCredentialIsCleared", func(t *testing.T) {
		creds := credentialmock.NewStore(credentialmock.WithCredential(credential.Credential{
			AccessToken:  "stale-access",
			RefreshToken: "stale-refresh",
		}))
		store := newStore(t, &authBackend{rejectMe: true}, config.RefreshModeBody, creds)

		state, err := store.CheckAuth(t.Context())
		require.Error(t, err)
		assert.Equal(t, session.StatusAnonymous, state.Status)
		assert.True(t, creds.Current().IsZero())
	})
}

func TestStore_InvalidatedSignal(t *testing.T) {
	var transitions []session.Status
	creds := credentialmock.NewStore(credentialmock.WithCredential(credential.Credential{
		AccessToken: "access-1",
	}))
	store := newStore(t, &authBackend{}, config.RefreshModeBody, creds,
		session.WithChangeListener(func(s session.State) {
			transitions = append(transitions, s.Status)
		}))

	_, err := store.CheckAuth(t.Context())
	require.NoError(t, err)
	require.Equal(t, session.StatusAuthenticated, store.State().Status)

	store.Invalidated(t.Context())

	assert.Equal(t, session.StatusAnonymous, store.State().Status)
	assert.Equal(t, []session.Status{
		session.StatusChecking,
		session.StatusAuthenticated,
		session.StatusAnonymous,
	}, transitions)
}
