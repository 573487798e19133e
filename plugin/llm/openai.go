package llm

import (
	"context"
	"errors"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// newThrottle returns the flat pre-call limiter shared by both clients:
// one request per second, no burst. The first call passes without delay;
// each later call waits until a full second has passed since the previous
// one. This is deliberately a fixed spacing rather than adaptive backoff;
// it keeps the request cadence under free-tier provider limits.
func newThrottle() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 1)
}

func newAPIClient(cfg *Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}

// streamingClient is the streaming-capable OpenAI integration.
type streamingClient struct {
	client   *openai.Client
	cfg      *Config
	throttle *rate.Limiter
}

func newStreamingClient(cfg *Config) *streamingClient {
	return &streamingClient{
		client:   newAPIClient(cfg),
		cfg:      cfg,
		throttle: newThrottle(),
	}
}

func (c *streamingClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    convertMessages(messages),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty chat response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *streamingClient) ChatStream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	contents := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(contents)
		defer close(errs)

		if err := c.throttle.Wait(ctx); err != nil {
			errs <- err
			return
		}

		stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       c.cfg.Model,
			Messages:    convertMessages(messages),
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
			Stream:      true,
		})
		if err != nil {
			errs <- err
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- err
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case contents <- delta:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return contents, errs
}

// batchClient is the batch-only integration. Its ChatStream delivers the
// complete reply as a single fragment so callers can treat both clients
// uniformly.
type batchClient struct {
	client   *openai.Client
	cfg      *Config
	throttle *rate.Limiter
}

func newBatchClient(cfg *Config) *batchClient {
	return &batchClient{
		client:   newAPIClient(cfg),
		cfg:      cfg,
		throttle: newThrottle(),
	}
}

func (c *batchClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    convertMessages(messages),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty chat response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *batchClient) ChatStream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	contents := make(chan string, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(contents)
		defer close(errs)

		reply, err := c.Chat(ctx, messages)
		if err != nil {
			errs <- err
			return
		}
		contents <- reply
	}()

	return contents, errs
}
