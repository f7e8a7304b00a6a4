package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cravewise/backend/internal/types"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		if !ok {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}
		if !authenticate(c, validator, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a bearer token is sent and lets
// anonymous requests through. A malformed or invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if !ok {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}
		if !authenticate(c, validator, token) {
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous callers.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func authenticate(c *gin.Context, validator TokenValidator, token string) bool {
	if validator == nil {
		abortUnauthorized(c, "authentication is not configured")
		return false
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		abortUnauthorized(c, "invalid or expired token")
		return false
	}
	c.Set(UserIDKey, claims.Identity())
	c.Set("username", claims.Username)
	return true
}

func bearerToken(c *gin.Context) (token string, present, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, false
	}
	return parts[1], true, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: msg})
}
