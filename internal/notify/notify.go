// Package notify delivers transactional email such as OTP codes.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/octobees/business-directory/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages through a transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Provider.
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "", "log":
		return NewLogMailer(logger), nil
	case "smtp":
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.FromName), nil
	case "sendgrid":
		return NewSendGrid(cfg.SendGridAPIKey, cfg.SMTPEmail, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a mailer for local development.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email not sent (log mail provider)", "to", msg.To, "subject", msg.Subject)
	m.logger.DebugContext(ctx, "email body", "to", msg.To, "text", msg.Text)
	return nil
}
