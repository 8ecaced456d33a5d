// Package mailer sends transactional email over SMTP. Configuration
// comes from its own env block so the dispatcher can be wired (or left
// unconfigured) independently of the rest of the server.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

const defaultSendTimeout = 10 * time.Second

// Mailer represents an email sender.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a Mailer from the SMTP_* environment variables.
func NewMailer(logger zerolog.Logger) (*Mailer, error) {
	cfg, err := newMailerConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config: cfg,
		dialer: dialer,
		logger: logger,
	}, nil
}

// Send sends a single email. The send is bounded by the configured
// timeout; a timeout is reported as an error like any other dispatch
// failure so callers can roll back dependent state.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	timeout := m.config.sendTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Error().Err(err).Strs("to", email.To).Msg("email dispatch failed")
		}
		return err
	case <-ctx.Done():
		m.logger.Error().Strs("to", email.To).Dur("timeout", timeout).Msg("email dispatch timed out")
		return ctx.Err()
	}
}

// SendVerificationEmail sends the signup verification link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, link string) error {
	return m.Send(ctx, Email{
		To:       []string{to},
		Subject:  "Verify your email - ShareIT",
		HTMLBody: verificationHTML(link),
	})
}

// SendPasswordResetEmail sends the password reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, link string) error {
	return m.Send(ctx, Email{
		To:       []string{to},
		Subject:  "Password Reset Request",
		HTMLBody: passwordResetHTML(link),
	})
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host           string `env:"SMTP_HOST"`
	Port           int    `env:"SMTP_PORT"`
	Username       string `env:"SMTP_USERNAME"`
	Password       string `env:"SMTP_PASSWORD"`
	From           string `env:"SMTP_FROM"`
	TimeoutSeconds int    `env:"SMTP_SEND_TIMEOUT_SECONDS"`
}

func newMailerConfig() (*mailerConfig, error) {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse mailer environment: %w", err)
	}
	return &cfg, nil
}

func (c *mailerConfig) sendTimeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultSendTimeout
}

func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}
