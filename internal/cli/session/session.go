// Package session owns the authenticated-user state of the CLI. It wraps the
// API client and the token store into one place that knows who is logged in,
// so commands never juggle tokens themselves.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/organico-dev/organico/internal/cli/client"
	"github.com/organico-dev/organico/internal/cli/tokenstore"
	"github.com/organico-dev/organico/internal/permissions"
)

// Store tracks the current user for the lifetime of a process. It starts in
// the loading state and stays there until Bootstrap has run.
type Store struct {
	client *client.Client
	tokens tokenstore.Store

	mu        sync.Mutex
	bootstrap sync.Once
	loading   bool
	user      *permissions.User
}

// New creates a session store over the given client and token store
func New(c *client.Client, tokens tokenstore.Store) *Store {
	return &Store{
		client:  c,
		tokens:  tokens,
		loading: true,
	}
}

// Bootstrap restores the session from the stored credentials. It runs at
// most once per process; later calls are no-ops. Without a stored access
// token it settles into the anonymous state, and when the profile fetch
// fails it clears every stored credential so the next run starts clean.
func (s *Store) Bootstrap(ctx context.Context) {
	s.bootstrap.Do(func() {
		defer s.setLoading(false)

		if _, err := s.tokens.Get(tokenstore.KeyAccessToken); err != nil {
			return
		}

		user, err := s.client.CurrentUser(ctx)
		if err != nil {
			s.tokens.Clear() //nolint:errcheck
			return
		}
		s.setUser(user)
	})
}

// Login exchanges credentials for tokens and loads the profile. The stored
// session only changes when the whole sequence succeeds; a failed profile
// fetch rolls the tokens back so no half-written state survives.
func (s *Store) Login(ctx context.Context, email, password string) error {
	pair, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.tokens.Set(tokenstore.KeyAccessToken, pair.Access); err != nil {
		return err
	}
	if err := s.tokens.Set(tokenstore.KeyRefreshToken, pair.Refresh); err != nil {
		s.tokens.Clear() //nolint:errcheck
		return err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.tokens.Clear() //nolint:errcheck
		return err
	}
	if data, err := json.Marshal(user); err == nil {
		s.tokens.Set(tokenstore.KeyUserData, string(data)) //nolint:errcheck
	}
	s.setUser(user)
	s.setLoading(false)
	return nil
}

// Register creates the account and then logs in with the same credentials.
// A registration failure is returned as-is, without any login attempt.
func (s *Store) Register(ctx context.Context, data client.RegisterData) error {
	if err := s.client.Register(ctx, data); err != nil {
		return err
	}
	return s.Login(ctx, data.Email, data.Password)
}

// Logout drops the stored credentials and the in-memory user. It never
// fails; a missing or broken keychain entry still leaves the session
// anonymous.
func (s *Store) Logout() {
	s.tokens.Clear() //nolint:errcheck
	s.setUser(nil)
	s.setLoading(false)
}

// CurrentUser returns the logged-in user, or nil when anonymous
func (s *Store) CurrentUser() *permissions.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsLoading reports whether the initial restore is still pending
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsAuthenticated reports whether an active user is logged in
func (s *Store) IsAuthenticated() bool {
	return permissions.IsAuthenticated(s.CurrentUser())
}

func (s *Store) setUser(user *permissions.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}
