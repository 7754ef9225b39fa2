package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridSendFunc func(ctx context.Context, m *mail.SGMailV3) (status int, body string, err error)

// SendGrid delivers mail through the SendGrid v3 API.
type SendGrid struct {
	from *mail.Email
	send sendGridSendFunc
}

// NewSendGrid builds a SendGrid mailer.
func NewSendGrid(apiKey, fromEmail, fromName string) *SendGrid {
	client := sendgrid.NewSendClient(apiKey)
	return &SendGrid{
		from: mail.NewEmail(fromName, fromEmail),
		send: func(ctx context.Context, m *mail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, m)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}
}

// Send implements Mailer.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	html := msg.HTML
	if html == "" {
		html = "<p>" + msg.Text + "</p>"
	}
	message := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Text, html)

	status, body, err := s.send(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.To, err)
	}
	if status >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", status, body)
	}
	return nil
}
