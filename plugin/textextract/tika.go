// Package textextract extracts reference-document text from uploaded files
// using an Apache Tika server. The extracted text becomes the session's
// reference context, attached to subsequent provider requests.
package textextract

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"context"

	"github.com/pkg/errors"
)

// SupportedMimeTypes lists the document formats accepted for reference
// context extraction.
var SupportedMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// Config holds the extraction configuration.
type Config struct {
	// ServerURL is the URL of the Tika server (e.g. http://localhost:9998).
	ServerURL string
	// Timeout is the HTTP timeout for extraction requests.
	Timeout time.Duration
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:9998",
		Timeout:   30 * time.Second,
	}
}

// Extractor turns uploaded documents into plain text. Implemented by Client
// and by test fakes.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}

// Client extracts text through a Tika server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new extraction client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// IsSupported reports whether the content type can be extracted.
func (c *Client) IsSupported(contentType string) bool {
	for _, t := range SupportedMimeTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// ExtractText extracts plain text from a document. Text for which nothing
// can be extracted returns an empty string, which callers treat as
// "no document".
func (c *Client) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	if !c.IsSupported(contentType) {
		return "", errors.Errorf("unsupported content type: %s", contentType)
	}
	if c.config.ServerURL == "" {
		return "", errors.New("no Tika server configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.config.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "tika server request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("tika server returned status %d: %s", resp.StatusCode, string(body))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}
	return strings.TrimSpace(string(text)), nil
}
