package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/octobees/business-directory/internal/dto"
)

func newTestOTPService(repo *memoryVerificationRepository, mailer *recordingMailer, now *time.Time, opts ...OTPOption) *OTPService {
	svc := NewOTPService(repo, mailer, nil, opts...)
	svc.now = func() time.Time { return *now }
	return svc
}

func TestOTPService_SendAndVerify(t *testing.T) {
	repo := newMemoryVerificationRepository()
	mailer := &recordingMailer{}
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, mailer, &now)
	ctx := context.Background()

	if err := svc.Send(ctx, dto.SendOTPRequest{Email: " User@Example.com "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, ok := repo.records["user@example.com"]
	if !ok {
		t.Fatalf("expected lower-cased email to be stored")
	}
	if len(record.OTP) != 4 || record.OTP < "1000" || record.OTP > "9999" {
		t.Fatalf("expected 4 digit code, got %q", record.OTP)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Subject != "Your OTP Code" || !strings.Contains(mailer.sent[0].Text, record.OTP) {
		t.Fatalf("unexpected mail: %+v", mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].Text, "valid for 5 minutes") {
		t.Fatalf("expected validity notice, got %q", mailer.sent[0].Text)
	}

	verified, err := svc.Verify(ctx, dto.VerifyOTPRequest{Email: "USER@example.com", OTP: dto.FlexString(record.OTP)})
	if err != nil || !verified {
		t.Fatalf("expected code to verify, got %v (%v)", verified, err)
	}
	verified, _ = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "user@example.com", OTP: dto.FlexString(record.OTP)})
	if !verified {
		t.Fatalf("code stays valid after success unless single use is enabled")
	}

	verified, _ = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "user@example.com", OTP: "0000"})
	if verified {
		t.Fatalf("wrong code must not verify")
	}

	now = now.Add(5*time.Minute + time.Second)
	verified, _ = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "user@example.com", OTP: dto.FlexString(record.OTP)})
	if verified {
		t.Fatalf("expired code must not verify")
	}
}

func TestOTPService_ResendReplacesCode(t *testing.T) {
	repo := newMemoryVerificationRepository()
	now := time.Now()
	svc := newTestOTPService(repo, &recordingMailer{}, &now)
	svc.random = bytes.NewReader(bytes.Repeat([]byte{0x01}, 64))

	if err := svc.Send(context.Background(), dto.SendOTPRequest{Email: "a@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := repo.records["a@example.com"]

	svc.random = bytes.NewReader(bytes.Repeat([]byte{0x02}, 64))
	now = now.Add(time.Minute)
	if err := svc.Send(context.Background(), dto.SendOTPRequest{Email: "a@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := repo.records["a@example.com"]
	if len(repo.records) != 1 {
		t.Fatalf("expected a single record per email")
	}
	if first.OTP == second.OTP || !second.CreatedAt.After(first.CreatedAt) {
		t.Fatalf("expected fresh code and timestamp, got %+v then %+v", first, second)
	}
}

func TestOTPService_SingleUse(t *testing.T) {
	repo := newMemoryVerificationRepository()
	now := time.Now()
	svc := newTestOTPService(repo, &recordingMailer{}, &now, WithSingleUseOTP(true))
	repo.records["a@example.com"] = entityVerification("a@example.com", "1234", now)

	verified, err := svc.Verify(context.Background(), dto.VerifyOTPRequest{Email: "a@example.com", OTP: "1234"})
	if err != nil || !verified {
		t.Fatalf("expected verification, got %v (%v)", verified, err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected record to be deleted after use")
	}
	verified, _ = svc.Verify(context.Background(), dto.VerifyOTPRequest{Email: "a@example.com", OTP: "1234"})
	if verified {
		t.Fatalf("single use code must not verify twice")
	}
}

func TestOTPService_Errors(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	svc := newTestOTPService(newMemoryVerificationRepository(), &recordingMailer{}, &now)
	err := svc.Send(ctx, dto.SendOTPRequest{Email: "not-an-email"})
	if fields := validationFields(t, err); fields["email"] == "" {
		t.Fatalf("expected email error, got %v", fields)
	}

	_, err = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@example.com"})
	if fields := validationFields(t, err); fields["otp"] == "" {
		t.Fatalf("expected otp error, got %v", fields)
	}

	verified, err := svc.Verify(ctx, dto.VerifyOTPRequest{Email: "nobody@example.com", OTP: "1234"})
	if err != nil || verified {
		t.Fatalf("unknown email should simply not verify, got %v (%v)", verified, err)
	}

	svc = newTestOTPService(newMemoryVerificationRepository(), &recordingMailer{err: errors.New("smtp down")}, &now)
	if err := svc.Send(ctx, dto.SendOTPRequest{Email: "a@example.com"}); !errors.Is(err, ErrNotification) {
		t.Fatalf("expected notification error, got %v", err)
	}

	repo := newMemoryVerificationRepository()
	repo.err = errors.New("db down")
	svc = newTestOTPService(repo, &recordingMailer{}, &now)
	if _, err := svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@example.com", OTP: "1234"}); err == nil {
		t.Fatalf("expected repository error to surface")
	}
}
