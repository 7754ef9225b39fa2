package entity

import "time"

// EmailVerification holds the latest one-time passcode issued for an email.
type EmailVerification struct {
	Email     string    `json:"email"`
	OTP       string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is older than ttl at now.
func (v *EmailVerification) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.CreatedAt) > ttl
}
