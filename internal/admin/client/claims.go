package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the console can read from a stored access token
// without the backend's key. It is informational only: nothing here is
// trusted, and expiry is still only enforced by the backend.
type TokenClaims struct {
	Subject   string
	Email     string
	IsAdmin   bool
	ExpiresAt *time.Time
}

type accessClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// PeekClaims decodes a JWT access token without verifying its signature.
// Opaque (non-JWT) tokens return an error.
func PeekClaims(token string) (*TokenClaims, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}
	out := &TokenClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		out.ExpiresAt = &exp
	}
	return out, nil
}
