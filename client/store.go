package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// SessionStore holds exactly one Session value and broadcasts changes to
// subscribers. All writes go through an atomic replace guarded by a
// monotonic generation counter, so a slow earlier load can never overwrite
// the result of an operation initiated after it.
type SessionStore struct {
	api    API
	logger *slog.Logger

	mu          sync.Mutex
	session     Session
	generation  uint64
	ready       bool
	subscribers []func(Session)
}

// NewSessionStore creates a store holding the anonymous session.
func NewSessionStore(api API, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{api: api, logger: logger}
}

// Current returns the session as last applied.
func (s *SessionStore) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Ready reports whether at least one Load has completed, distinguishing
// "still determining" from "known anonymous".
func (s *SessionStore) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Subscribe registers a callback invoked after every applied session change.
func (s *SessionStore) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// begin allocates a generation for a new write operation. Any in-flight
// response carrying an older generation is discarded on arrival.
func (s *SessionStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// apply installs the session if no newer operation superseded gen.
func (s *SessionStore) apply(gen uint64, session Session) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	s.session = session
	subs := make([]func(Session), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
	return true
}

// Load asks the portal who the current caller is and replaces the session
// with the answer. Unauthorized resolves to anonymous without error; any
// other failure also resets to anonymous so a stale session never survives
// a failed refresh. A canceled context leaves the store untouched and does
// not mark it ready.
func (s *SessionStore) Load(ctx context.Context) error {
	gen := s.begin()

	session, err := s.api.CurrentIdentity(ctx)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.apply(gen, Session{})
		s.markReady()
		if errors.Is(err, ErrUnauthorized) {
			return nil
		}
		return err
	}

	s.apply(gen, *session)
	s.markReady()
	return nil
}

func (s *SessionStore) markReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
}

// Replace atomically swaps in a session, superseding any in-flight Load.
func (s *SessionStore) Replace(session Session) {
	gen := s.begin()
	s.apply(gen, session)
}

// Clear resets the store to anonymous, superseding any in-flight Load.
func (s *SessionStore) Clear() {
	s.Replace(Session{})
}

// Logout clears the local session and then asks the portal to revoke the
// server-side session. The local clear never waits on the server: the
// user-visible contract is "signed out here", so a failed revocation is
// only logged.
func (s *SessionStore) Logout(ctx context.Context) {
	s.Clear()

	if err := s.api.InvalidateSession(ctx); err != nil {
		s.logger.WarnContext(ctx, "server-side session revocation failed",
			slog.String("error", err.Error()),
		)
	}
}
