package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *Profile {
	return &Profile{
		Mode:           "dev",
		Driver:         "sqlite",
		DSN:            "parley_dev.db",
		Secret:         "secret",
		LLMProvider:    "groq",
		LLMModel:       "llama3-8b-8192",
		LLMAPIKey:      "key",
		SystemPosition: "prepend",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validProfile().Validate())
}

func TestValidateFailsFastOnMissingSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantMsg string
	}{
		{"missing dsn", func(p *Profile) { p.DSN = "" }, "PARLEY_DSN"},
		{"missing secret", func(p *Profile) { p.Secret = "" }, "PARLEY_SECRET"},
		{"missing llm key", func(p *Profile) { p.LLMAPIKey = "" }, "PARLEY_LLM_API_KEY"},
		{"bad driver", func(p *Profile) { p.Driver = "mysql" }, "unsupported database driver"},
		{"bad position", func(p *Profile) { p.SystemPosition = "middle" }, "invalid system position"},
		{"otp without smtp", func(p *Profile) { p.OTPEnabled = true }, "PARLEY_SMTP_HOST"},
		{"otp without credentials", func(p *Profile) {
			p.OTPEnabled = true
			p.SMTPHost = "smtp.example.com"
		}, "SMTP credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateDefaultsMode(t *testing.T) {
	p := validProfile()
	p.Mode = "staging"
	require.NoError(t, p.Validate())
	assert.Equal(t, "dev", p.Mode)
	assert.True(t, p.IsDev())
}

func TestValidateDefaultsSMTPPort(t *testing.T) {
	p := validProfile()
	p.OTPEnabled = true
	p.SMTPHost = "smtp.example.com"
	p.SMTPUsername = "u"
	p.SMTPPassword = "p"
	require.NoError(t, p.Validate())
	assert.Equal(t, 587, p.SMTPPort)
}
