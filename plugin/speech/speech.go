// Package speech transcribes recorded audio into chat input through an
// OpenAI-compatible transcription endpoint.
package speech

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Sentinel results returned instead of errors. The chat flow treats these
// as "no usable input" rather than failures, so a bad recording never
// interrupts the conversation.
const (
	ResultNotUnderstood = "Could not understand audio"
	ResultServiceError  = "Speech Recognition service error"
)

// ListenTimeout bounds a single transcription attempt. After it expires the
// attempt resolves to ResultNotUnderstood instead of blocking.
const ListenTimeout = 5 * time.Second

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) string
}

// Config holds the transcription service configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string // default: whisper-1
}

// Client transcribes audio using the provider's audio API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a transcription client.
func NewClient(cfg *Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Transcribe converts audio to text. Failures resolve to sentinel values,
// never errors: a timeout or unintelligible recording yields
// ResultNotUnderstood, a provider failure yields ResultServiceError.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) string {
	ctx, cancel := context.WithTimeout(ctx, ListenTimeout)
	defer cancel()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	})
	if err != nil {
		if ctx.Err() != nil {
			slog.Warn("transcription timed out", "timeout", ListenTimeout)
			return ResultNotUnderstood
		}
		slog.Warn("transcription failed", "error", err)
		return ResultServiceError
	}
	if resp.Text == "" {
		return ResultNotUnderstood
	}
	return resp.Text
}

// IsSentinel reports whether a transcription result is one of the sentinel
// values rather than usable input.
func IsSentinel(result string) bool {
	return result == ResultNotUnderstood || result == ResultServiceError
}
