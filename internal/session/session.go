// Package session tracks who is logged in. The store is the only writer of
// the persisted credential outside the gateway's refresh path, and the only
// source of truth for the authentication status the rest of the program
// reads.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/internal/api"
	"github.com/openinv/invctl/internal/config"
	"github.com/openinv/invctl/internal/credential"
	"github.com/openinv/invctl/internal/gateway"
	"github.com/openinv/invctl/internal/serviceerr"
)

type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusChecking      Status = "checking"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// State is an immutable snapshot of the session. User is set only while
// Status is StatusAuthenticated.
type State struct {
	Status Status
	User   *api.User
}

// ChangeFunc observes every state transition. It is called outside the
// store's lock with the new snapshot.
type ChangeFunc func(State)

type Store struct {
	api   *api.Client
	creds credential.Store

	mode       config.RefreshMode
	cookieName string

	mu       sync.Mutex
	state    State
	onChange ChangeFunc
}

type Option func(*Store)

// WithChangeListener registers fn to be invoked on every transition.
func WithChangeListener(fn ChangeFunc) Option {
	return func(s *Store) { s.onChange = fn }
}

func NewStore(cfg *config.Config, apiClient *api.Client, creds credential.Store, opts ...Option) *Store {
	s := &Store{
		api:        apiClient,
		creds:      creds,
		mode:       cfg.Auth.RefreshMode,
		cookieName: cfg.Auth.RefreshCookieName,
		state:      State{Status: StatusUnknown},
		onChange:   func(State) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) transition(next State) State {
	s.mu.Lock()
	s.state = next
	fn := s.onChange
	s.mu.Unlock()

	fn(next)
	return next
}

// Login authenticates and persists exactly one credential for the
// configured backend. A failed login stores nothing and lands in
// StatusAnonymous.
func (s *Store) Login(ctx context.Context, email, password string) (api.User, error) {
	tokens, header, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.transition(State{Status: StatusAnonymous})
		return api.User{}, err
	}

	cred := credential.Credential{
		AccessToken: tokens.AccessToken,
		ObtainedAt:  time.Now().UTC(),
	}
	switch s.mode {
	case config.RefreshModeCookie:
		if v, ok := gateway.RefreshCookie(header, s.cookieName); ok {
			cred.RefreshCookie = v
		}
	default:
		cred.RefreshToken = tokens.RefreshToken
	}

	if err := s.creds.Save(ctx, cred); err != nil {
		s.transition(State{Status: StatusAnonymous})
		return api.User{}, fmt.Errorf("persisting credential: %w", err)
	}

	user := tokens.User
	s.transition(State{Status: StatusAuthenticated, User: &user})
	slogctx.Info(ctx, "Logged in", "user", user.Email, "role", user.Role)

	return user, nil
}

// Logout tells the backend to drop the session and clears the local
// credential regardless of whether the server call worked.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		slogctx.Warn(ctx, "Server-side logout failed, clearing local state anyway", "error", err)
	}

	err := s.creds.Clear(ctx)
	s.transition(State{Status: StatusAnonymous})
	if err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// CheckAuth resolves Unknown into Authenticated or Anonymous. Without a
// stored credential it answers Anonymous without touching the network;
// otherwise it validates the credential against the profile endpoint and
// clears it on any failure. Safe to call repeatedly.
func (s *Store) CheckAuth(ctx context.Context) (State, error) {
	s.transition(State{Status: StatusChecking})

	if _, err := s.creds.Load(ctx); err != nil {
		if !errors.Is(err, serviceerr.ErrNoCredential) {
			slogctx.Warn(ctx, "Could not read stored credential", "error", err)
		}
		return s.transition(State{Status: StatusAnonymous}), nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			slogctx.Error(ctx, "Could not clear rejected credential", "error", clearErr)
		}
		return s.transition(State{Status: StatusAnonymous}), err
	}

	return s.transition(State{Status: StatusAuthenticated, User: &user}), nil
}

// Invalidated is wired as the gateway's session-invalidated handler. The
// gateway has already cleared the credential by the time it fires.
func (s *Store) Invalidated(ctx context.Context) {
	slogctx.Info(ctx, "Session invalidated")
	s.transition(State{Status: StatusAnonymous})
}
