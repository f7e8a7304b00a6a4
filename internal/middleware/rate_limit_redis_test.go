//go:build integration

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cravewise/backend/internal/testhelpers"
)

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 2, KeyPrefix: "test"}, nil)
	fixed := time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	router := gin.New()
	router.Use(limiter.RateLimitMiddleware())
	router.POST("/analyze", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/analyze", nil)
		req.RemoteAddr = "198.51.100.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		last = w
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, last.Body.String(), `"retry_after":2700`)

	remaining, reset, err := limiter.GetRemainingRequests(context.Background(), "ip:198.51.100.1")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), reset.UTC())

	remaining, _, err = limiter.GetRemainingRequests(context.Background(), "ip:198.51.100.2")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
