// Package llm provides chat completion clients for OpenAI-compatible
// providers. Two implementations exist behind one interface: a batch-only
// client and a streaming-capable client. Provider choice is static
// configuration, decided at startup.
package llm

import (
	"context"

	"github.com/pkg/errors"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// ChatService is the chat completion interface.
type ChatService interface {
	// Chat performs synchronous chat and returns the complete reply.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatStream performs streaming chat. Both channels are closed when
	// the stream is exhausted; at most one error is delivered.
	ChatStream(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// Config represents chat provider configuration.
type Config struct {
	Provider    string  // openai, groq
	Model       string  // gpt-4o-mini, llama3-8b-8192
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
}

// NewChatService creates a ChatService for the configured provider.
// "openai" is streaming-capable; "groq" is the batch-only integration.
func NewChatService(cfg *Config) (ChatService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat provider API key is required")
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	switch cfg.Provider {
	case "openai":
		return newStreamingClient(cfg), nil
	case "groq":
		// Groq speaks the OpenAI chat-completions API.
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.groq.com/openai/v1"
		}
		return newBatchClient(cfg), nil
	default:
		return nil, errors.Errorf("unsupported chat provider: %s", cfg.Provider)
	}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}
