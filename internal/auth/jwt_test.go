package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("op-1", "admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "op-1" || claims.Username != "admin" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("op", "admin", "admin"); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	token, err := manager.GenerateToken("op", "admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := manager.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestJWTManager_RejectsOtherSigners(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("different", time.Hour)
	token, _ := other.GenerateToken("op", "admin", "admin")
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to fail")
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "admin", Role: "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := manager.ParseToken(unsigned); err == nil {
		t.Fatalf("expected unsigned token to fail")
	}
	if manager.TTL() != time.Hour {
		t.Fatalf("unexpected ttl: %s", manager.TTL())
	}
}
