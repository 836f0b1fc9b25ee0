package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockme/internal/admin/client"
	dErrors "lockme/pkg/domain-errors"
	"lockme/pkg/requestcontext"
)

const (
	signingKey  = "test-signing-key"
	identityKey = "test-identity-key"
	issuer      = "http://lockme.test"
)

func newService(ttl time.Duration) *Service {
	return NewService(signingKey, identityKey, issuer, ttl)
}

func TestIssueAccessToken(t *testing.T) {
	svc := newService(15 * time.Minute)
	ctx := context.Background()

	token, err := svc.IssueAccessToken(ctx, 7, "admin@lockme.test", true)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "admin@lockme.test", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Contains(t, claims.Audience, AdminAudience)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)

	// the console reads the same claims without the key
	peeked, err := client.PeekClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "7", peeked.Subject)
	assert.True(t, peeked.IsAdmin)
}

func TestIssueAccessToken_RequiresUser(t *testing.T) {
	_, err := newService(time.Minute).IssueAccessToken(context.Background(), 0, "x@lockme.test", false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newService(time.Minute)
	ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-time.Hour))

	token, err := svc.IssueAccessToken(ctx, 1, "a@lockme.test", true)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.ErrorContains(t, err, "token expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	svc := newService(time.Minute)
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		require.ErrorContains(t, err, "invalid token")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("")
		require.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewService("another-key", identityKey, issuer, time.Minute)
		token, err := other.IssueAccessToken(ctx, 1, "a@lockme.test", true)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		require.Error(t, err)
	})

	t.Run("identity token is not an access token", func(t *testing.T) {
		token, err := svc.MintIdentityToken(ctx, "a@lockme.test", "")
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		require.Error(t, err)
	})

	t.Run("algorithm confusion", func(t *testing.T) {
		claims := AccessTokenClaims{
			Email: "a@lockme.test",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    issuer,
				Audience:  []string{AdminAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		require.Error(t, err)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other := NewService(signingKey, identityKey, "http://elsewhere", time.Minute)
		token, err := other.IssueAccessToken(ctx, 1, "a@lockme.test", true)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		require.ErrorContains(t, err, "issuer")
	})
}

func TestValidateToken_Adapter(t *testing.T) {
	svc := newService(time.Minute)
	token, err := svc.IssueAccessToken(context.Background(), 3, "m@lockme.test", false)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "3", claims.UserID)
	assert.Equal(t, "m@lockme.test", claims.Email)
}

func TestIdentityTokens(t *testing.T) {
	svc := newService(time.Minute)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.MintIdentityToken(ctx, " Admin@LockMe.test ", "Admin")
		require.NoError(t, err)
		claims, err := svc.VerifyIdentityToken(token)
		require.NoError(t, err)
		assert.Equal(t, "Admin@LockMe.test", claims.Email)
		assert.Equal(t, "Admin", claims.Name)
		assert.Equal(t, "google-admin@lockme.test", claims.Subject)
	})

	t.Run("email required", func(t *testing.T) {
		_, err := svc.MintIdentityToken(ctx, "  ", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("access token is not an identity token", func(t *testing.T) {
		token, err := svc.IssueAccessToken(ctx, 1, "a@lockme.test", true)
		require.NoError(t, err)
		_, err = svc.VerifyIdentityToken(token)
		require.Error(t, err)
	})

	t.Run("signed with the wrong key", func(t *testing.T) {
		other := NewService(signingKey, "other-identity-key", issuer, time.Minute)
		token, err := other.MintIdentityToken(ctx, "a@lockme.test", "")
		require.NoError(t, err)
		_, err = svc.VerifyIdentityToken(token)
		require.Error(t, err)
	})
}
