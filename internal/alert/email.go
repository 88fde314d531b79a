package alert

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rapidwifi/zone/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type NoOpMailer struct{}

func (NoOpMailer) Send(ctx context.Context, to []string, subject, body string) error {
	return nil
}

type SMTPMailer struct {
	cfg config.AlertConfig
}

func NewSMTPMailer(cfg config.AlertConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", to[0], subject, body))
	return smtp.SendMail(addr, auth, m.cfg.SMTPFrom, to, msg)
}

func NewMailerFromConfig(cfg config.Config) Mailer {
	if !cfg.Alert.Enabled {
		return NoOpMailer{}
	}
	return NewSMTPMailer(cfg.Alert)
}
