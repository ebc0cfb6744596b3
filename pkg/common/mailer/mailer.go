// Package mailer sends outbound notification email for the admission flow.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// Mailer sends one message. Implementations must treat Send as best-effort:
// the approval workflow commits decisions before sending and only logs and
// reports a failed send.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ConfigFromEnv reads SMTP_* and MAIL_FROM with the organization's defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = "ukmik@utdi.ac.id"
	}
	return cfg
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg Config
}

func NewSMTP(cfg Config) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("mailer: SMTP_HOST is required")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}
