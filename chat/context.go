package chat

// ContextStore holds the running transcript and the optional reference
// document for one session. It is owned by exactly one session and is not
// safe for concurrent use on its own; every access goes through the
// orchestrator's mutex, which the owning session shares for its accessors.
type ContextStore struct {
	turns     []Turn
	reference string
}

// NewContextStore creates an empty context store.
func NewContextStore() *ContextStore {
	return &ContextStore{}
}

// AppendTurn appends a turn to the transcript. User turns with empty or
// whitespace-only content are dropped without error so that blank input
// never produces a provider call or a dangling transcript entry. Returns
// whether the turn was appended.
func (s *ContextStore) AppendTurn(role Role, content string) bool {
	if role == RoleUser && IsBlank(content) {
		return false
	}
	if !role.Valid() {
		return false
	}
	s.turns = append(s.turns, Turn{Role: role, Content: content})
	return true
}

// SetReferenceContext replaces the reference document wholesale. Empty text
// means "no document".
func (s *ContextStore) SetReferenceContext(text string) {
	s.reference = text
}

// ReferenceContext returns the currently attached reference document text.
func (s *ContextStore) ReferenceContext() string {
	return s.reference
}

// Snapshot returns an ordered copy of the transcript. Callers may hold the
// slice across later appends without observing them.
func (s *ContextStore) Snapshot() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of committed turns.
func (s *ContextStore) Len() int {
	return len(s.turns)
}
