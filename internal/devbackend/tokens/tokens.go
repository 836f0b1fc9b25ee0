// Package tokens issues and validates the development backend's HS256 tokens:
// access tokens handed to the admin console and the identity tokens that
// stand in for Google ID tokens.
package tokens

import (
	"context"
	"errors"
	"strings"
	"time"

	id "lockme/pkg/domain"
	dErrors "lockme/pkg/domain-errors"
	"lockme/pkg/platform/middleware/auth"
	"lockme/pkg/requestcontext"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audiences carried by issued tokens.
const (
	AdminAudience    = "lockme_admin"
	IdentityAudience = "lockme_dev_identity"
)

const identityTTL = 10 * time.Minute

// AccessTokenClaims are the claims of an admin access token. The subject is
// the user id.
type AccessTokenClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// IdentityClaims mirror the subset of a Google ID token the backend reads.
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service signs access tokens with one key and verifies identity tokens
// with another.
type Service struct {
	signingKey  []byte
	identityKey []byte
	issuer      string
	tokenTTL    time.Duration
}

func NewService(signingKey, identityKey, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey:  []byte(signingKey),
		identityKey: []byte(identityKey),
		issuer:      issuer,
		tokenTTL:    tokenTTL,
	}
}

// TTL returns the access token lifetime.
func (s *Service) TTL() time.Duration {
	return s.tokenTTL
}

func (s *Service) IssueAccessToken(ctx context.Context, userID id.UserID, email string, isAdmin bool) (string, error) {
	if userID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{AdminAudience},
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	return signed, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := new(AccessTokenClaims)
	if err := parse(tokenString, claims, s.signingKey, AdminAudience); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(claims.Issuer, s.issuer) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
	}
	return claims, nil
}

// ValidateToken adapts access token validation to the auth middleware.
func (s *Service) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{UserID: claims.Subject, Email: claims.Email}, nil
}

// MintIdentityToken produces a token that /auth/google accepts for email.
func (s *Service) MintIdentityToken(ctx context.Context, email, name string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google-" + strings.ToLower(email),
			ExpiresAt: jwt.NewNumericDate(now.Add(identityTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  []string{IdentityAudience},
		},
	})
	signed, err := token.SignedString(s.identityKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign identity token")
	}
	return signed, nil
}

func (s *Service) VerifyIdentityToken(tokenString string) (*IdentityClaims, error) {
	claims := new(IdentityClaims)
	if err := parse(tokenString, claims, s.identityKey, IdentityAudience); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "identity token has no email")
	}
	return claims, nil
}

func parse(tokenString string, claims jwt.Claims, key []byte, audience string) error {
	if tokenString == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return key, nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return nil
}
