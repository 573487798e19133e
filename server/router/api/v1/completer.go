package v1

import (
	"context"

	"github.com/parleyhq/parley/chat"
	"github.com/parleyhq/parley/plugin/llm"
)

// completerAdapter bridges the llm.ChatService provider to the orchestrator's
// Completer boundary, converting between the two message shapes.
type completerAdapter struct {
	service llm.ChatService
}

func toMessages(turns []chat.Turn) []llm.Message {
	out := make([]llm.Message, len(turns))
	for i, t := range turns {
		out[i] = llm.Message{Role: string(t.Role), Content: t.Content}
	}
	return out
}

func (a *completerAdapter) Chat(ctx context.Context, turns []chat.Turn) (string, error) {
	return a.service.Chat(ctx, toMessages(turns))
}

func (a *completerAdapter) ChatStream(ctx context.Context, turns []chat.Turn) (<-chan string, <-chan error) {
	return a.service.ChatStream(ctx, toMessages(turns))
}
