package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/metrics"
	"github.com/octobees/business-directory/internal/notify"
	"github.com/octobees/business-directory/internal/repository"
)

const (
	defaultOTPTTL = 5 * time.Minute
	otpMin        = 1000
	otpSpan       = 9000

	otpSubject = "Your OTP Code"
)

// OTPService issues and checks email one-time passcodes.
type OTPService struct {
	repo      repository.EmailVerificationRepository
	mailer    notify.Mailer
	validate  *validator.Validate
	ttl       time.Duration
	singleUse bool
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	random    io.Reader
}

// OTPOption configures optional behaviour.
type OTPOption func(*OTPService)

// WithOTPTTL overrides the five minute validity window.
func WithOTPTTL(ttl time.Duration) OTPOption {
	return func(s *OTPService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSingleUseOTP deletes a code once it has been verified.
func WithSingleUseOTP(enabled bool) OTPOption {
	return func(s *OTPService) { s.singleUse = enabled }
}

// WithOTPMetrics records dispatches and verifications.
func WithOTPMetrics(m *metrics.Metrics) OTPOption {
	return func(s *OTPService) { s.metrics = m }
}

// WithOTPLogger overrides the default logger.
func WithOTPLogger(logger *slog.Logger) OTPOption {
	return func(s *OTPService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewOTPService builds the service.
func NewOTPService(repo repository.EmailVerificationRepository, mailer notify.Mailer, validate *validator.Validate, opts ...OTPOption) *OTPService {
	if validate == nil {
		validate = NewValidator()
	}
	s := &OTPService{
		repo:     repo,
		mailer:   mailer,
		validate: validate,
		ttl:      defaultOTPTTL,
		logger:   slog.Default(),
		now:      time.Now,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send generates a fresh code for the email, replacing any previous one, and
// mails it.
func (s *OTPService) Send(ctx context.Context, req dto.SendOTPRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return validationErrorFrom(err)
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.repo.Upsert(ctx, req.Email, code, s.now().UTC()); err != nil {
		return err
	}

	minutes := int(s.ttl / time.Minute)
	err = s.mailer.Send(ctx, notify.Message{
		To:      req.Email,
		Subject: otpSubject,
		Text:    fmt.Sprintf("Your OTP code is %s. It is valid for %d minutes.", code, minutes),
		HTML:    fmt.Sprintf("<p>Your OTP code is <strong>%s</strong>. It is valid for %d minutes.</p>", code, minutes),
	})
	s.metrics.RecordOTPSent(err == nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "otp dispatch failed", slog.String("email", req.Email), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}
	return nil
}

// Verify reports whether code is the current, unexpired passcode for email.
func (s *OTPService) Verify(ctx context.Context, req dto.VerifyOTPRequest) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(string(req.OTP))
	if email == "" || code == "" {
		return false, &ValidationError{
			Message: "Email and OTP are required",
			Fields:  missingFields(map[string]string{"email": email, "otp": code}),
		}
	}

	record, err := s.repo.Find(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			s.metrics.RecordOTPVerification(false)
			return false, nil
		}
		return false, err
	}

	verified := subtle.ConstantTimeCompare([]byte(record.OTP), []byte(code)) == 1 &&
		!record.Expired(s.now().UTC(), s.ttl)
	s.metrics.RecordOTPVerification(verified)

	if verified && s.singleUse {
		if err := s.repo.Delete(ctx, email); err != nil {
			return false, err
		}
	}
	return verified, nil
}

func (s *OTPService) generateCode() (string, error) {
	n, err := rand.Int(s.random, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", otpMin+n.Int64()), nil
}

func missingFields(values map[string]string) map[string]string {
	fields := make(map[string]string)
	for k, v := range values {
		if v == "" {
			fields[k] = k + " is required"
		}
	}
	return fields
}
