package utils

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, exp, err := GenerateToken("sess-1", 2, "employee", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry should be in the future")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.UserId != 2 || claims.Role != "employee" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := GenerateToken("sess-2", 1, "admin", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := GenerateToken("sess-3", 1, "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	original := JwtSecret
	SetSecret("another-secret")
	defer func() { JwtSecret = original }()

	if _, err := ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to fail")
	}
}
