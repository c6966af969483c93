package avakit

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func TestCredentialExpiry(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token := mintToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})

	got, err := CredentialExpiry(token)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}
}

func TestCredentialExpiryNoExpClaim(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"sub": "user-1"})

	got, err := CredentialExpiry(token)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expiry = %v, want zero time", got)
	}
}

func TestCredentialExpiryGarbage(t *testing.T) {
	if _, err := CredentialExpiry("not-a-jwt"); err == nil {
		t.Error("expected error for garbage token")
	}
	if _, err := CredentialExpiry(""); err == nil {
		t.Error("expected error for empty token")
	}
}
