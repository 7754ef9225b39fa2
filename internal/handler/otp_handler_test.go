package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/repository/repotest"
	"github.com/octobees/business-directory/internal/service"
)

var otpInMessage = regexp.MustCompile(`\b(\d{4})\b`)

func newOTPTestServer(t *testing.T, mailer *captureMailer) (*echo.Echo, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	svc := service.NewOTPService(store.VerificationRepository(), mailer, service.NewValidator(), service.WithOTPLogger(discardLogger()))
	h := NewOTPHandler(svc, discardLogger())

	e := echo.New()
	e.POST("/api/send-otp", h.Send)
	e.POST("/api/verify-otp", h.Verify)
	return e, store
}

func TestOTPHandler_SendAndVerify(t *testing.T) {
	mailer := &captureMailer{}
	e, _ := newOTPTestServer(t, mailer)

	rec := doJSON(e, http.MethodPost, "/api/send-otp", `{"email":"Owner@Example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "owner@example.com" {
		t.Fatalf("expected one mail to the lower-cased address, got %+v", mailer.sent)
	}
	match := otpInMessage.FindStringSubmatch(mailer.sent[0].Text)
	if match == nil {
		t.Fatalf("expected a 4 digit code in %q", mailer.sent[0].Text)
	}

	rec = doJSON(e, http.MethodPost, "/api/verify-otp", `{"email":"owner@example.com","otp":"`+match[1]+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.VerifyOTPResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Verified || resp.Message != "OTP verified successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOTPHandler_VerifyFailures(t *testing.T) {
	e, store := newOTPTestServer(t, &captureMailer{})
	store.Verifications["late@example.com"] = entity.EmailVerification{
		Email:     "late@example.com",
		OTP:       "4321",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	store.Verifications["ok@example.com"] = entity.EmailVerification{
		Email:     "ok@example.com",
		OTP:       "1234",
		CreatedAt: time.Now().UTC(),
	}

	cases := map[string]struct {
		body   string
		status int
	}{
		"expired":       {`{"email":"late@example.com","otp":"4321"}`, http.StatusBadRequest},
		"wrong code":    {`{"email":"ok@example.com","otp":"9999"}`, http.StatusBadRequest},
		"unknown email": {`{"email":"nobody@example.com","otp":"1234"}`, http.StatusBadRequest},
		"missing otp":   {`{"email":"ok@example.com"}`, http.StatusBadRequest},
		"boolean otp":   {`{"email":"ok@example.com","otp":true}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/verify-otp", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOTPHandler_VerifyNumericCode(t *testing.T) {
	e, store := newOTPTestServer(t, &captureMailer{})
	store.Verifications["ok@example.com"] = entity.EmailVerification{
		Email:     "ok@example.com",
		OTP:       "1234",
		CreatedAt: time.Now().UTC(),
	}

	rec := doJSON(e, http.MethodPost, "/api/verify-otp", `{"email":"ok@example.com","otp":1234}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for numeric otp, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.VerifyOTPResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Verified {
		t.Fatalf("expected verified response, got %+v", resp)
	}
}

func TestOTPHandler_SendErrors(t *testing.T) {
	e, _ := newOTPTestServer(t, &captureMailer{})
	rec := doJSON(e, http.MethodPost, "/api/send-otp", `{"email":"not-an-email"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}

	e, _ = newOTPTestServer(t, &captureMailer{err: errBoom})
	rec = doJSON(e, http.MethodPost, "/api/send-otp", `{"email":"owner@example.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when mail fails, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Failed to send OTP" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
