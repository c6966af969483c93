package avakit

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialExpiry extracts the expiry claim from a transport join token
// without verifying its signature; verification is the provider's job. Tokens
// without an exp claim return the zero time and no error.
func CredentialExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse transport token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
