package notify

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const smtpTimeout = 15 * time.Second

// SMTP relays mail through an authenticated SMTP server (STARTTLS on 587).
type SMTP struct {
	host     string
	port     int
	username string
	password string
	fromName string
	deliver  func(ctx context.Context, msg *gomail.Msg) error
}

// NewSMTP configures an SMTP mailer that sends as username.
func NewSMTP(host string, port int, username, password, fromName string) *SMTP {
	s := &SMTP{
		host:     host,
		port:     port,
		username: username,
		password: password,
		fromName: fromName,
	}
	s.deliver = s.dialAndSend
	return s
}

// Send implements Mailer.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTP) compose(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	var err error
	if s.fromName != "" {
		err = m.FromFormat(s.fromName, s.username)
	} else {
		err = m.From(s.username)
	}
	if err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("parse recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()

	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func (s *SMTP) dialAndSend(ctx context.Context, m *gomail.Msg) error {
	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(smtpTimeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}
