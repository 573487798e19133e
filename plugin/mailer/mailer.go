// Package mailer delivers one-time login codes over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"
)

// Mailer sends a one-time code to an address. Implemented by SMTPMailer and
// by test fakes.
type Mailer interface {
	SendOTP(to string, code string) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through a plain SMTP server with AUTH.
type SMTPMailer struct {
	config *Config
}

// NewSMTPMailer creates a mailer for the given SMTP configuration.
func NewSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// SendOTP emails the one-time code. The code expires five minutes after
// issuance; the message says so.
func (m *SMTPMailer) SendOTP(to string, code string) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your login code\r\n\r\nYour one-time login code is %s. It expires in 5 minutes.\r\n",
		m.config.From, to, code))

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg); err != nil {
		return errors.Wrap(err, "failed to send OTP mail")
	}
	return nil
}
