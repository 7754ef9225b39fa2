package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/octobees/business-directory/internal/config"
)

func TestNew(t *testing.T) {
	m, err := New(config.MailConfig{Provider: "log"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = New(config.MailConfig{Provider: "smtp", SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPEmail: "noreply@example.com", SMTPPassword: "pw"}, nil)
	require.NoError(t, err)
	require.IsType(t, &SMTP{}, m)
	assert.Equal(t, "smtp.example.com", m.(*SMTP).host)
	assert.Equal(t, 587, m.(*SMTP).port)

	m, err = New(config.MailConfig{Provider: "sendgrid", SendGridAPIKey: "SG.key", SMTPEmail: "noreply@example.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGrid{}, m)

	_, err = New(config.MailConfig{Provider: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))

	err := NewLogMailer(logger).Send(context.Background(), Message{To: "a@example.com", Subject: "Your OTP Code", Text: "1234"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "to=a@example.com")
	assert.NotContains(t, buf.String(), "1234")
}

func TestSMTPSend(t *testing.T) {
	s := NewSMTP("smtp.example.com", 587, "noreply@example.com", "pw", "Business Directory")

	var got *gomail.Msg
	s.deliver = func(ctx context.Context, m *gomail.Msg) error {
		got = m
		return nil
	}

	err := s.Send(context.Background(), Message{To: "User <user@example.com>", Subject: "Your OTP Code", Text: "Your OTP code is 1234."})
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, got.GetFrom(), 1)
	assert.Equal(t, "noreply@example.com", got.GetFrom()[0].Address)
	assert.Equal(t, "Business Directory", got.GetFrom()[0].Name)
	require.Len(t, got.GetTo(), 1)
	assert.Equal(t, "user@example.com", got.GetTo()[0].Address)
	assert.Equal(t, []string{"Your OTP Code"}, got.GetGenHeader(gomail.HeaderSubject))

	parts := got.GetParts()
	require.Len(t, parts, 1)
	assert.Equal(t, gomail.TypeTextPlain, parts[0].GetContentType())
	body, err := parts[0].GetContent()
	require.NoError(t, err)
	assert.Equal(t, "Your OTP code is 1234.", string(body))
}

func TestSMTPSend_Alternative(t *testing.T) {
	s := NewSMTP("smtp.example.com", 587, "noreply@example.com", "pw", "")
	var got *gomail.Msg
	s.deliver = func(ctx context.Context, m *gomail.Msg) error {
		got = m
		return nil
	}

	require.NoError(t, s.Send(context.Background(), Message{To: "user@example.com", Subject: "Hi", Text: "plain", HTML: "<b>html</b>"}))
	assert.Empty(t, got.GetFrom()[0].Name)

	parts := got.GetParts()
	require.Len(t, parts, 2)
	assert.Equal(t, gomail.TypeTextHTML, parts[1].GetContentType())

	var buf bytes.Buffer
	_, err := got.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "multipart/alternative")
}

func TestSMTPSend_Errors(t *testing.T) {
	s := NewSMTP("smtp.example.com", 587, "noreply@example.com", "pw", "")
	var deadline bool
	s.deliver = func(ctx context.Context, m *gomail.Msg) error {
		_, deadline = ctx.Deadline()
		return errors.New("535 authentication failed")
	}

	assert.Error(t, s.Send(context.Background(), Message{To: "not-an-address"}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	assert.ErrorContains(t, s.Send(ctx, Message{To: "user@example.com"}), "535")
	assert.True(t, deadline, "expected the request context to reach delivery")

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	assert.ErrorIs(t, s.Send(canceled, Message{To: "user@example.com"}), context.Canceled)
}

func TestSendGridSend(t *testing.T) {
	sg := NewSendGrid("SG.key", "noreply@example.com", "Business Directory")

	var captured *mail.SGMailV3
	sg.send = func(ctx context.Context, m *mail.SGMailV3) (int, string, error) {
		captured = m
		return 202, "", nil
	}
	require.NoError(t, sg.Send(context.Background(), Message{To: "user@example.com", Subject: "Your OTP Code", Text: "Your OTP code is 1234."}))
	require.NotNil(t, captured)
	assert.Equal(t, "Your OTP Code", captured.Subject)
	assert.Equal(t, "noreply@example.com", captured.From.Address)
	require.Len(t, captured.Personalizations, 1)
	assert.Equal(t, "user@example.com", captured.Personalizations[0].To[0].Address)

	sg.send = func(ctx context.Context, m *mail.SGMailV3) (int, string, error) {
		return 401, `{"errors":[{"message":"bad key"}]}`, nil
	}
	assert.ErrorContains(t, sg.Send(context.Background(), Message{To: "user@example.com"}), "401")

	sg.send = func(ctx context.Context, m *mail.SGMailV3) (int, string, error) {
		return 0, "", errors.New("dial tcp: timeout")
	}
	assert.ErrorContains(t, sg.Send(context.Background(), Message{To: "user@example.com"}), "timeout")
}
