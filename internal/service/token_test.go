package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenService("test-secret")

	t.Run("should validate a token it issued", func(t *testing.T) {
		token, err := svc.GenerateToken("user-1", "tester", time.Hour)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Identity())
		assert.Equal(t, "tester", claims.Username)
	})

	t.Run("should accept the legacy user_id claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "legacy-user",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "legacy-user", claims.Identity())
	})

	t.Run("should reject expired tokens", func(t *testing.T) {
		token, err := svc.GenerateToken("user-1", "", -time.Minute)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject a different secret", func(t *testing.T) {
		token, err := NewTokenService("other").GenerateToken("user-1", "", time.Hour)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject other algorithms", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should refuse when no secret is configured", func(t *testing.T) {
		_, err := NewTokenService("").ValidateToken("anything")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
