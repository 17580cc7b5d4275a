package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/mukbit/acs-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestTokenService(signingKey string) auth.TokenService {
	return auth.NewTokenService(
		[]byte(signingKey),
		24,
		"test-issuer",
		jwt.ClaimStrings{"test-audience"},
		testLogger{},
	)
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	service := newTestTokenService("test-signing-key")

	account := &auth.Account{
		ID:    bson.NewObjectID(),
		Email: "user@example.com",
	}

	token, err := service.Generate(account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, account.ID.Hex(), claims.AccountID())
	assert.Equal(t, account.Email, claims.AccountEmail())
	assert.True(t, claims.Expires().After(time.Now()))
	assert.False(t, claims.IssuedAt().IsZero())
}

func TestTokenServiceGenerateNilAccount(t *testing.T) {
	service := newTestTokenService("test-signing-key")

	_, err := service.Generate(nil)
	assert.Error(t, err)
}

func TestTokenServiceValidateFailsClosed(t *testing.T) {
	service := newTestTokenService("test-signing-key")

	account := &auth.Account{
		ID:    bson.NewObjectID(),
		Email: "user@example.com",
	}

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Validate("not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := service.Validate("")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other := newTestTokenService("another-signing-key")
		token, err := other.Generate(account)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		now := time.Now()
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   account.ID.Hex(),
				Audience:  jwt.ClaimStrings{"test-audience"},
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			},
			UID:   account.ID.Hex(),
			Email: account.Email,
		}

		token, err := service.SignClaims(claims)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService(
			[]byte("test-signing-key"),
			24,
			"someone-else",
			jwt.ClaimStrings{"test-audience"},
			testLogger{},
		)
		token, err := other.Generate(account)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}
