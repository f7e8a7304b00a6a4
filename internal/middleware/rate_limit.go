package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window limiter backed by Redis. A limiter without a
// Redis client allows everything.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		logger: logger.Named("ratelimit"),
		now:    time.Now,
	}
}

// NewCravingRateLimiter limits analyze and regenerate calls per hour
func NewCravingRateLimiter(redisClient *redis.Client, perHour int, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:analyze",
	}, logger)
}

// Enabled reports whether limits are enforced.
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.redis != nil && rl.config.Limit > 0
}

// Limit is the number of requests allowed per window.
func (rl *RateLimiter) Limit() int { return rl.config.Limit }

// Window is the length of one counting window.
func (rl *RateLimiter) Window() time.Duration { return rl.config.Window }

// Subject identifies the caller: the user id when authenticated, otherwise
// the client IP.
func Subject(c *gin.Context) string {
	if user := UserID(c); user != "" {
		return "user:" + user
	}
	return "ip:" + c.ClientIP()
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), Subject(c))
		if err != nil {
			// Log error but don't fail the request
			rl.logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		rl.setHeaders(c, remaining, resetTime)
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":              false,
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          int(resetTime.Sub(rl.now()).Seconds()),
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) setHeaders(c *gin.Context, remaining int, resetTime time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
}

func (rl *RateLimiter) windowKey(subject string) (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix()), windowStart
}

// IsAllowed counts a request from subject and reports whether it fits the window
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	key, windowStart := rl.windowKey(subject)

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := max(rl.config.Limit-count, 0)
	resetTime := windowStart.Add(rl.config.Window)
	return count <= rl.config.Limit, remaining, resetTime, nil
}

// GetRemainingRequests returns the number of remaining requests for subject
// without counting one
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, subject string) (int, time.Time, error) {
	key, windowStart := rl.windowKey(subject)
	resetTime := windowStart.Add(rl.config.Window)

	count, err := rl.redis.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		// No requests yet in this window
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return max(rl.config.Limit-count, 0), resetTime, nil
}
