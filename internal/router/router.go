package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/config"
	"github.com/pageza/cravewise/backend/internal/api"
	"github.com/pageza/cravewise/backend/internal/middleware"
)

// Handlers groups the API handlers mounted by SetupRouter.
type Handlers struct {
	Recommendations *api.RecommendationHandler
	History         *api.HistoryHandler
	Health          *api.HealthHandler
	RateLimits      *api.RateLimitHandler
}

// SetupRouter configures the application routes
func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tokens middleware.TokenValidator,
	limiter *middleware.RateLimiter,
	handlers Handlers,
) *gin.Engine {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Success: false, Error: "route not found"})
	})

	// Health check endpoint (no auth required)
	handlers.Health.RegisterRoutes(router)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(tokens))
	{
		handlers.Recommendations.RegisterRoutes(v1, limiter.RateLimitMiddleware())
		handlers.RateLimits.RegisterRoutes(v1)

		// History routes require a signed-in user
		handlers.History.RegisterRoutes(v1)
	}

	return router
}
