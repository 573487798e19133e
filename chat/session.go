package chat

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// HistoryGateway is the persistence boundary for transcripts. The gateway
// owns the durable copy; the session owns the live one. Append merges by
// concatenation with whatever is already stored, preserving total order.
// The merge is not isolated against concurrent sessions for the same user;
// two live sessions can interleave their flushes.
type HistoryGateway interface {
	LoadLatest(ctx context.Context, userID int32) ([]Turn, error)
	Append(ctx context.Context, userID int32, delta []Turn) error
}

// Lifecycle is the session's persistence state.
type Lifecycle int

const (
	LifecycleActive Lifecycle = iota
	LifecycleFlushed
)

// Session is the per-login unit of conversation state. It owns one
// transcript and at most one reference document for its lifetime, and
// flushes the transcript delta to the gateway exactly once at session end.
//
// All session state shares the orchestrator's mutex, so a reference-context
// update, transcript read, or flush arriving on a concurrent request never
// interleaves with an in-flight exchange.
type Session struct {
	ID     string
	UserID int32

	store     *ContextStore
	orch      *Orchestrator
	gateway   HistoryGateway
	lifecycle Lifecycle
	loaded    int // turns restored from the gateway; flush sends turns[loaded:]
}

// NewSession creates a session for the given user. The gateway may be nil
// for ephemeral sessions that are never persisted.
func NewSession(userID int32, provider Completer, policy RequestPolicy, stream bool, gateway HistoryGateway) *Session {
	store := NewContextStore()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		store:     store,
		orch:      NewOrchestrator(store, provider, policy, stream),
		gateway:   gateway,
		lifecycle: LifecycleActive,
	}
}

// Start restores the latest stored transcript into the session. A missing
// history is not an error; the session simply begins empty.
func (s *Session) Start(ctx context.Context) error {
	if s.gateway == nil {
		return nil
	}
	turns, err := s.gateway.LoadLatest(ctx, s.UserID)
	if err != nil {
		return err
	}
	s.orch.mu.Lock()
	defer s.orch.mu.Unlock()
	for _, t := range turns {
		s.store.AppendTurn(t.Role, t.Content)
	}
	s.loaded = s.store.Len()
	return nil
}

// Exchange forwards one user input through the orchestrator.
func (s *Session) Exchange(ctx context.Context, input string, onFragment func(string)) (Turn, bool) {
	return s.orch.Exchange(ctx, input, onFragment)
}

// SetReferenceContext attaches a reference document for the rest of the
// session. The previous document, if any, is replaced wholesale. Blocks
// while an exchange is in flight, so the document never changes mid-request.
func (s *Session) SetReferenceContext(text string) {
	s.orch.mu.Lock()
	defer s.orch.mu.Unlock()
	s.store.SetReferenceContext(text)
}

// Transcript returns an ordered copy of the session transcript.
func (s *Session) Transcript() []Turn {
	s.orch.mu.Lock()
	defer s.orch.mu.Unlock()
	return s.store.Snapshot()
}

// State exposes the orchestrator state, for observability.
func (s *Session) State() State {
	return s.orch.State()
}

// Flush persists the turns produced during this session. It is idempotent:
// the first call moves the session to LifecycleFlushed and later calls are
// no-ops, so repeated shutdown triggers cannot double-save.
func (s *Session) Flush(ctx context.Context) error {
	s.orch.mu.Lock()
	defer s.orch.mu.Unlock()

	if s.lifecycle == LifecycleFlushed {
		return nil
	}
	s.lifecycle = LifecycleFlushed

	if s.gateway == nil {
		return nil
	}
	delta := s.store.Snapshot()[s.loaded:]
	if len(delta) == 0 {
		return nil
	}
	if err := s.gateway.Append(ctx, s.UserID, delta); err != nil {
		slog.Error("failed to flush session transcript", "session", s.ID, "user_id", s.UserID, "error", err)
		return err
	}
	slog.Info("session transcript flushed", "session", s.ID, "user_id", s.UserID, "turns", len(delta))
	return nil
}

// Flushed reports whether the session has already been persisted.
func (s *Session) Flushed() bool {
	s.orch.mu.Lock()
	defer s.orch.mu.Unlock()
	return s.lifecycle == LifecycleFlushed
}
