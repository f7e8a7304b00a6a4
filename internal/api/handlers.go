package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/cravewise/backend/internal/database"
	"github.com/pageza/cravewise/backend/internal/middleware"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// HealthHandler reports the status of the API and its backing stores.
type HealthHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	provider string
}

// NewHealthHandler creates a new HealthHandler. db and redisClient may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, provider string) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, provider: provider}
}

// RegisterRoutes registers the health routes on the engine root.
func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.HealthCheck)
	router.GET("/api/health", h.HealthCheck)
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "disabled", "redis": "disabled"}
	if h.db != nil {
		checks["database"] = "ok"
		if err := database.HealthCheck(ctx, h.db); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	// Redis only backs sessions and limits, so it degrades without failing.
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":   state,
		"message":  "Cravewise API is running",
		"version":  Version,
		"provider": h.provider,
		"checks":   checks,
	})
}

// RateLimitHandler reports how many analyses the caller has left.
type RateLimitHandler struct {
	limiter *middleware.RateLimiter
}

// NewRateLimitHandler creates a new RateLimitHandler
func NewRateLimitHandler(limiter *middleware.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

// RegisterRoutes registers endpoints for checking rate limit status
func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rate-limits", h.Status)
}

// Status handles GET /rate-limits
func (h *RateLimitHandler) Status(c *gin.Context) {
	if !h.limiter.Enabled() {
		c.JSON(http.StatusOK, gin.H{"success": true, "enabled": false})
		return
	}

	remaining, resetTime, err := h.limiter.GetRemainingRequests(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Success: false, Error: "failed to check rate limit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"enabled":    true,
		"limit":      h.limiter.Limit(),
		"remaining":  remaining,
		"reset_time": resetTime.Unix(),
		"window":     h.limiter.Window().String(),
	})
}
