package agrly

import (
	"log/slog"
	"sync"
)

// TokenStore persists the bearer token so an admin session survives a
// process restart. Implemented by the sqlite-backed session store.
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Session is the single point of truth for the bearer token. It is an
// explicit object handed to the client, never a package-level singleton,
// and its accessors are the only mutation path.
type Session struct {
	mu    sync.RWMutex
	token string
	store TokenStore
}

// NewSession builds a session, restoring a previously stored token so a
// restart resumes an authenticated session without re-login. A nil store
// yields a purely in-memory session.
func NewSession(store TokenStore) *Session {
	s := &Session{store: store}
	if store == nil {
		return s
	}
	token, err := store.LoadToken()
	if err != nil {
		slog.Warn("Failed to restore session token", "error", err)
		return s
	}
	s.token = token
	return s
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the token in memory and in the durable store. A store
// failure is logged but does not invalidate the in-memory session.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveToken(token); err != nil {
			slog.Warn("Failed to persist session token", "error", err)
		}
	}
}

// Clear drops the token from memory and from the durable store. Safe to
// call repeatedly.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearToken(); err != nil {
			slog.Warn("Failed to clear persisted session token", "error", err)
		}
	}
}

// Authenticated reports whether a token is currently held. It says nothing
// about expiry: an expired token is only discovered when the server rejects
// a request.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
