package v1

import (
	"context"
	"sync"

	"github.com/parleyhq/parley/chat"
)

// SessionRegistry holds the live chat session per user. A user has at most
// one active session; it is created lazily on first use and removed at
// logout after its transcript is flushed.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[int32]*chat.Session
	factory  func(userID int32) *chat.Session
}

// NewSessionRegistry creates a registry using the given session factory.
func NewSessionRegistry(factory func(userID int32) *chat.Session) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[int32]*chat.Session),
		factory:  factory,
	}
}

// GetOrCreate returns the user's live session, starting a new one (and
// loading stored history) when none exists.
func (r *SessionRegistry) GetOrCreate(ctx context.Context, userID int32) (*chat.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[userID]; ok {
		return session, nil
	}
	session := r.factory(userID)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	r.sessions[userID] = session
	return session, nil
}

// Peek returns the live session without creating one.
func (r *SessionRegistry) Peek(userID int32) (*chat.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[userID]
	return session, ok
}

// Remove flushes and discards the user's session. Safe to call when no
// session exists.
func (r *SessionRegistry) Remove(ctx context.Context, userID int32) error {
	r.mu.Lock()
	session, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return session.Flush(ctx)
}

// FlushAll flushes every live session, used at server shutdown. Sessions
// already flushed are skipped by the idempotent flush.
func (r *SessionRegistry) FlushAll(ctx context.Context) {
	r.mu.Lock()
	sessions := make([]*chat.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	r.mu.Unlock()

	for _, session := range sessions {
		_ = session.Flush(ctx)
	}
}
