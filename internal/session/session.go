// Package session holds a visitor's bearer token and the identity derived
// from it. The Session is the only writer of the token during normal flows;
// the store API adapter may additionally Invalidate it on a 401.
package session

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storeapi"
)

// Verifier asks the store API who owns the current token.
type Verifier interface {
	VerifyToken(ctx context.Context) (*models.Identity, error)
}

// Persister mirrors token writes to the visitor's own storage.
type Persister interface {
	Save(token string) error
	Remove()
}

// Snapshot is a point-in-time view of a session. Identity is nil while the
// role is unknown.
type Snapshot struct {
	Token         string
	Authenticated bool
	Resolved      bool
	Identity      *models.Identity
}

// IsAdmin reports whether the snapshot carries a verified admin identity.
func (s Snapshot) IsAdmin() bool {
	return s.Authenticated && s.Identity != nil && s.Identity.IsAdmin()
}

// Session is one visitor's authentication state.
type Session struct {
	mu           sync.RWMutex
	token        string
	identity     *models.Identity
	resolver     *Resolver
	persist      Persister
	onInvalidate []func(token string)
}

// New creates a session for token (which may be empty).
func New(token string, resolver *Resolver, persist Persister) *Session {
	return &Session{token: token, resolver: resolver, persist: persist}
}

// Token returns the current bearer token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the token and forgets the derived identity. It does not
// touch persistent storage; callers mirror the write themselves.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.identity = nil
	}
	s.token = token
}

// Invalidate clears the token in memory and in persistent storage. This is
// the authorization-failure path.
func (s *Session) Invalidate() {
	s.mu.Lock()
	old := s.token
	s.token = ""
	s.identity = nil
	hooks := s.onInvalidate
	s.mu.Unlock()

	if old == "" {
		return
	}
	if s.persist != nil {
		s.persist.Remove()
	}
	if s.resolver != nil {
		s.resolver.Forget(old)
	}
	for _, fn := range hooks {
		fn(old)
	}
}

// OnInvalidate registers fn to run with the dropped token after Invalidate.
func (s *Session) OnInvalidate(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = append(s.onInvalidate, fn)
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the verified identity is an administrator.
func (s *Session) IsAdmin() bool {
	return s.Snapshot().IsAdmin()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Token:         s.token,
		Authenticated: s.token != "",
		Resolved:      s.token == "" || s.identity != nil,
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// Resolve derives the identity behind the token. A token whose JWT expiry
// has passed is dropped without a network call. A 401 from the API drops the
// token. Any other failure leaves the session authenticated with an unknown
// role and is returned to the caller.
func (s *Session) Resolve(ctx context.Context, v Verifier) error {
	snap := s.Snapshot()
	if snap.Resolved {
		return nil
	}
	token := snap.Token

	if s.resolver == nil {
		return errors.New("session: no resolver configured")
	}
	if s.resolver.Expired(token) {
		s.Invalidate()
		return nil
	}

	identity, err := s.resolver.Resolve(ctx, token, v)
	if err != nil {
		if errors.Is(err, storeapi.ErrUnauthorized) {
			s.Invalidate()
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token {
		s.identity = identity
	}
	return nil
}
