package credentialmock

import (
	"context"
	"sync"

	"github.com/openinv/invctl/internal/credential"
	"github.com/openinv/invctl/internal/serviceerr"
)

type StoreOption func(*Store)

// Store is an in-memory credential store for tests.
type Store struct {
	mu   sync.Mutex
	cred credential.Credential

	loadErr, saveErr, clearErr error

	saves, clears int
}

func WithCredential(cred credential.Credential) StoreOption {
	return func(s *Store) { s.cred = cred }
}
func WithLoadError(err error) StoreOption {
	return func(s *Store) { s.loadErr = err }
}
func WithSaveError(err error) StoreOption {
	return func(s *Store) { s.saveErr = err }
}
func WithClearError(err error) StoreOption {
	return func(s *Store) { s.clearErr = err }
}

var _ = credential.Store(&Store{})

func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Load(_ context.Context) (credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return credential.Credential{}, s.loadErr
	}
	if s.cred.IsZero() {
		return credential.Credential{}, serviceerr.ErrNoCredential
	}
	return s.cred, nil
}

func (s *Store) Save(_ context.Context, cred credential.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cred = cred
	s.saves++
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cred = credential.Credential{}
	s.clears++
	return nil
}

// Current returns the stored credential without error handling, for
// assertions.
func (s *Store) Current() credential.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred
}

// Saves returns how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Clears returns how many times Clear succeeded.
func (s *Store) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}
