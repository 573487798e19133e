// Package profile holds the startup configuration for the server.
package profile

import (
	"os"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// DSN points to where parley stores its data
	DSN string
	// Secret signs session tokens
	Secret string
	// Version is the current version of the server
	Version string

	// Chat provider configuration
	LLMProvider    string // PARLEY_LLM_PROVIDER (openai or groq)
	LLMModel       string // PARLEY_LLM_MODEL
	LLMAPIKey      string // PARLEY_LLM_API_KEY
	LLMBaseURL     string // PARLEY_LLM_BASE_URL
	LLMStreaming   bool   // PARLEY_LLM_STREAMING
	ContextWindow  int    // PARLEY_CONTEXT_WINDOW (turns per request, default 10)
	SystemPosition string // PARLEY_SYSTEM_POSITION (prepend or append)

	// Speech / vision configuration (default to the chat provider key)
	SpeechModel string // PARLEY_SPEECH_MODEL
	VisionModel string // PARLEY_VISION_MODEL

	// Reference-document extraction
	TikaServerURL string // PARLEY_TIKA_URL

	// OTP mail configuration
	OTPEnabled   bool   // PARLEY_OTP_ENABLED
	SMTPHost     string // PARLEY_SMTP_HOST
	SMTPPort     int    // PARLEY_SMTP_PORT
	SMTPUsername string // PARLEY_SMTP_USERNAME
	SMTPPassword string // PARLEY_SMTP_PASSWORD
	SMTPFrom     string // PARLEY_SMTP_FROM
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv fills unset fields from environment variables.
func (p *Profile) FromEnv() {
	if p.LLMProvider == "" {
		p.LLMProvider = getEnvOrDefault("PARLEY_LLM_PROVIDER", "groq")
	}
	if p.LLMModel == "" {
		defaultModel := "llama3-8b-8192"
		if p.LLMProvider == "openai" {
			defaultModel = "gpt-4o-mini"
		}
		p.LLMModel = getEnvOrDefault("PARLEY_LLM_MODEL", defaultModel)
	}
	if p.LLMAPIKey == "" {
		p.LLMAPIKey = os.Getenv("PARLEY_LLM_API_KEY")
	}
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = os.Getenv("PARLEY_LLM_BASE_URL")
	}
	if os.Getenv("PARLEY_LLM_STREAMING") == "true" {
		p.LLMStreaming = true
	}
	if p.SystemPosition == "" {
		p.SystemPosition = getEnvOrDefault("PARLEY_SYSTEM_POSITION", "prepend")
	}
	if p.SpeechModel == "" {
		p.SpeechModel = os.Getenv("PARLEY_SPEECH_MODEL")
	}
	if p.VisionModel == "" {
		p.VisionModel = os.Getenv("PARLEY_VISION_MODEL")
	}
	if p.TikaServerURL == "" {
		p.TikaServerURL = getEnvOrDefault("PARLEY_TIKA_URL", "http://localhost:9998")
	}
	if os.Getenv("PARLEY_OTP_ENABLED") == "true" {
		p.OTPEnabled = true
	}
	if p.SMTPHost == "" {
		p.SMTPHost = os.Getenv("PARLEY_SMTP_HOST")
	}
	if p.SMTPUsername == "" {
		p.SMTPUsername = os.Getenv("PARLEY_SMTP_USERNAME")
	}
	if p.SMTPPassword == "" {
		p.SMTPPassword = os.Getenv("PARLEY_SMTP_PASSWORD")
	}
	if p.SMTPFrom == "" {
		p.SMTPFrom = getEnvOrDefault("PARLEY_SMTP_FROM", p.SMTPUsername)
	}
}

// Validate checks that every required setting is present. Missing required
// settings fail here, at startup, with the variable named in the error,
// instead of surfacing later as a nil-reference failure mid-request.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver: %q", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("database connection string is required, set PARLEY_DSN")
	}
	if p.Secret == "" {
		return errors.New("session secret is required, set PARLEY_SECRET")
	}
	if p.LLMAPIKey == "" {
		return errors.New("chat provider API key is required, set PARLEY_LLM_API_KEY")
	}
	if p.SystemPosition != "prepend" && p.SystemPosition != "append" {
		return errors.Errorf("invalid system position: %q (want prepend or append)", p.SystemPosition)
	}
	if p.ContextWindow < 0 {
		return errors.Errorf("context window must be non-negative, got %d", p.ContextWindow)
	}
	if p.OTPEnabled {
		if p.SMTPHost == "" {
			return errors.New("SMTP host is required when OTP login is enabled, set PARLEY_SMTP_HOST")
		}
		if p.SMTPPort == 0 {
			p.SMTPPort = 587
		}
		if p.SMTPUsername == "" || p.SMTPPassword == "" {
			return errors.New("SMTP credentials are required when OTP login is enabled, set PARLEY_SMTP_USERNAME and PARLEY_SMTP_PASSWORD")
		}
	}
	return nil
}
