// Package vision describes uploaded images through a vision-capable chat
// model. Large images are downscaled before upload to keep request sizes
// inside provider limits.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultPrompt is used when the caller provides no question about the image.
const DefaultPrompt = "Describe the image."

// maxDimension is the longest edge an uploaded image is allowed before
// downscaling.
const maxDimension = 1024

// Config holds the vision service configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string // default: gpt-4o-mini
}

// Describer answers questions about images.
type Describer interface {
	Describe(ctx context.Context, image []byte, prompt string) (string, error)
}

// Client implements Describer over an OpenAI-compatible vision endpoint.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a vision client.
func NewClient(cfg *Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Describe sends the image with the given prompt and returns the model's
// description. An empty prompt falls back to DefaultPrompt.
func (c *Client) Describe(ctx context.Context, image []byte, prompt string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("no image provided")
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	prepared, err := prepareImage(image)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(prepared)),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "vision completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty vision response")
	}
	return resp.Choices[0].Message.Content, nil
}

// prepareImage re-encodes the upload as JPEG, downscaling when the longest
// edge exceeds maxDimension.
func prepareImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}
	return buf.Bytes(), nil
}
