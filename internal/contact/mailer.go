// Package contact relays messages from the public contact form to the support mailbox.
package contact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/cyberguardian/platform/internal/config"
	"github.com/cyberguardian/platform/internal/logging"
)

// ErrNotConfigured is returned when no SMTP host or support address is set.
var ErrNotConfigured = errors.New("contact relay not configured")

// Message is one contact form submission.
type Message struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var messageTemplate = template.Must(template.New("contact").Parse(
	`From: {{.From}}
To: {{.To}}
Reply-To: {{.ReplyTo}}
Subject: CyberGuardian contact from {{.Name}}
Content-Type: text/plain; charset=UTF-8

{{.Name}} <{{.ReplyTo}}> wrote:

{{.Body}}
`))

// Mailer sends contact messages over SMTP.
type Mailer struct {
	cfg    config.SMTP
	send   sendFunc
	logger zerolog.Logger
}

// NewMailer creates a mailer from SMTP config.
func NewMailer(cfg config.SMTP, logger zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logging.Component(logger, "contact"),
	}
}

// Configured reports whether messages can be delivered.
func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Port != 0 && m.cfg.SupportEmail != ""
}

// Send delivers msg to the support address with the sender as Reply-To.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.cfg.FromEmail
	if from == "" {
		from = m.cfg.SupportEmail
	}

	var body bytes.Buffer
	if err := messageTemplate.Execute(&body, map[string]string{
		"From":    from,
		"To":      m.cfg.SupportEmail,
		"ReplyTo": headerSafe(msg.Email),
		"Name":    headerSafe(msg.Name),
		"Body":    msg.Message,
	}); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	raw := strings.ReplaceAll(strings.ReplaceAll(body.String(), "\r\n", "\n"), "\n", "\r\n")

	if err := m.send(addr, auth, from, []string{m.cfg.SupportEmail}, []byte(raw)); err != nil {
		m.logger.Error().Err(err).Str("reply_to", msg.Email).Msg("failed to relay contact message")
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info().Str("reply_to", msg.Email).Msg("contact message relayed")
	return nil
}

// headerSafe strips line breaks so user input cannot add headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}
