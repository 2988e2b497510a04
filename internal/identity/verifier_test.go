package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	verifier := NewJWTVerifier("secret")
	token := signToken(t, "secret", jwt.MapClaims{
		"sub": "user@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	subject, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)
}

func TestVerifyWrongSecret(t *testing.T) {
	verifier := NewJWTVerifier("secret")
	token := signToken(t, "other-secret", jwt.MapClaims{"sub": "user@example.com"})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyExpiredToken(t *testing.T) {
	verifier := NewJWTVerifier("secret")
	token := signToken(t, "secret", jwt.MapClaims{
		"sub": "user@example.com",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyMissingSubject(t *testing.T) {
	verifier := NewJWTVerifier("secret")
	token := signToken(t, "secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyEmptyToken(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	_, err := verifier.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyGarbageToken(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	_, err := verifier.Verify(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
