package llm

import (
	"context"
	"testing"
	"time"
)

func TestNewChatService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{
			name: "OpenAI config",
			cfg: &Config{
				Provider:    "openai",
				Model:       "gpt-4o-mini",
				APIKey:      "test-key",
				MaxTokens:   2048,
				Temperature: 0.7,
			},
			expectError: false,
		},
		{
			name: "Groq config",
			cfg: &Config{
				Provider: "groq",
				Model:    "llama3-8b-8192",
				APIKey:   "test-key",
			},
			expectError: false,
		},
		{
			name: "Missing API key",
			cfg: &Config{
				Provider: "openai",
				Model:    "gpt-4o-mini",
			},
			expectError: true,
		},
		{
			name: "Unsupported provider",
			cfg: &Config{
				Provider: "unsupported",
				APIKey:   "test-key",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChatService(tt.cfg)
			if (err != nil) != tt.expectError {
				t.Errorf("NewChatService() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestGroqDefaultBaseURL(t *testing.T) {
	cfg := &Config{Provider: "groq", Model: "llama3-8b-8192", APIKey: "k"}
	if _, err := NewChatService(cfg); err != nil {
		t.Fatalf("NewChatService() error = %v", err)
	}
	if cfg.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("BaseURL = %q, want groq endpoint", cfg.BaseURL)
	}
}

func TestConvertMessages(t *testing.T) {
	messages := []Message{
		SystemMessage("You are a helpful assistant"),
		UserMessage("Hello"),
		AssistantMessage("Hi there"),
	}

	converted := convertMessages(messages)
	if len(converted) != len(messages) {
		t.Fatalf("convertMessages() length = %d, want %d", len(converted), len(messages))
	}
	for i, m := range messages {
		if converted[i].Role != m.Role || converted[i].Content != m.Content {
			t.Errorf("convertMessages()[%d] = %+v, want %+v", i, converted[i], m)
		}
	}
}

func TestThrottleSpacing(t *testing.T) {
	throttle := newThrottle()
	ctx := context.Background()

	// First call is immediate, second waits roughly the full interval.
	start := time.Now()
	if err := throttle.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if err := throttle.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("second call waited %v, want about 1s", elapsed)
	}
}
