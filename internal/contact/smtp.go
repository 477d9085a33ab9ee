package contact

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	To       string
}

// SMTP sends the message straight to the site owner's inbox.
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTP) Channel() Channel { return ChannelSMTP }

func (s *SMTP) Configured() bool {
	return s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.To != ""
}

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := m.SubjectOrDefault() + ": " + m.Name
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

%s

---
Sent from your portfolio contact form
`, m.Body())

	msg := []byte("To: " + s.cfg.To + "\r\n" +
		"Subject: " + headerSafe.Replace(subject) + "\r\n" +
		"From: " + s.cfg.Username + "\r\n" +
		"Reply-To: " + headerSafe.Replace(m.Email) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := s.send(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.Username, []string{s.cfg.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
