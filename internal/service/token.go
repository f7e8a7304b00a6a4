package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/cravewise/backend/internal/types"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// TokenService validates HS256 tokens signed with the shared secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new TokenService
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// GenerateToken issues a token for userID. Used by tests and local tooling;
// production tokens come from the auth provider.
func (s *TokenService) GenerateToken(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken parses tokenString and returns its claims
func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: authentication is not configured", ErrInvalidToken)
	}
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Identity() == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
