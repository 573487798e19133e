// Package chat implements the conversation core: the transcript state owned
// by a session, the provider request builder, and the turn orchestrator that
// sequences one user input into one committed assistant response.
package chat

import (
	"fmt"
	"strings"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is one role-tagged message unit in a conversation. Turns are values
// and are never mutated after construction.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTurn builds a validated turn.
func NewTurn(role Role, content string) (Turn, error) {
	if !role.Valid() {
		return Turn{}, fmt.Errorf("invalid role: %q", role)
	}
	return Turn{Role: role, Content: content}, nil
}

// IsBlank reports whether content is empty or whitespace-only.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}
