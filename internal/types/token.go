package types

import "github.com/golang-jwt/jwt/v5"

// TokenClaims represents the claims in a JWT token. Tokens issued by the
// external auth provider carry the user in "sub"; older ones use "user_id".
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Identity returns the authenticated user id.
func (c *TokenClaims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}
