// Package app wires the API process together with fx.
package app

import (
	"context"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cravewise/backend/config"
	"github.com/pageza/cravewise/backend/internal/api"
	"github.com/pageza/cravewise/backend/internal/database"
	"github.com/pageza/cravewise/backend/internal/llm"
	"github.com/pageza/cravewise/backend/internal/logging"
	"github.com/pageza/cravewise/backend/internal/middleware"
	"github.com/pageza/cravewise/backend/internal/places"
	"github.com/pageza/cravewise/backend/internal/recommend"
	"github.com/pageza/cravewise/backend/internal/router"
	"github.com/pageza/cravewise/backend/internal/server"
	"github.com/pageza/cravewise/backend/internal/service"
)

// ConfigModule provides the configuration and the root logger.
var ConfigModule = fx.Provide(
	config.LoadConfig,
	provideLogger,
)

// StorageModule provides the database, Redis and the session store.
var StorageModule = fx.Options(
	fx.Provide(provideDB, provideRedis, provideSessionStore),
	fx.Invoke(database.Migrate),
)

// ServiceModule provides the domain services.
var ServiceModule = fx.Provide(
	provideProvider,
	provideTokenService,
	provideRateLimiter,
	service.NewHistoryService,
	provideCravingService,
	provideMenuService,
)

// HTTPModule provides the handlers, router and server and starts serving.
var HTTPModule = fx.Options(
	fx.Provide(
		provideHandlers,
		provideRouter,
		provideServer,
	),
	fx.Invoke(registerServer),
)

// Options returns every module of the API process.
func Options() fx.Option {
	return fx.Options(
		ConfigModule,
		StorageModule,
		ServiceModule,
		HTTPModule,
	)
}

// New builds the application with fx events routed to zap.
func New() *fx.App {
	return fx.New(
		Options(),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Environment)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

func provideDB(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

// provideRedis returns nil when Redis is not configured or unreachable; the
// process then keeps sessions in memory and does not rate limit.
func provideRedis(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.RedisEnabled() {
		logger.Info("redis not configured, using in-memory sessions")
		return nil
	}
	client, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("failed to connect to redis, continuing without it", zap.Error(err))
		return nil
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

func provideSessionStore(cfg *config.Config, client *redis.Client) service.SessionStore {
	if client == nil {
		return service.NewMemorySessionStore()
	}
	return service.NewRedisSessionStore(client, service.LockTTLFor(cfg.LLMTimeout))
}

func provideProvider(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	provider, err := llm.New(context.Background(), llm.Options{
		Provider:    cfg.LLMProvider,
		OpenAIKey:   cfg.OpenAIAPIKey,
		OpenAIURL:   cfg.OpenAIBaseURL,
		TextModel:   cfg.OpenAITextModel,
		VisionModel: cfg.OpenAIVisionModel,
		GeminiKey:   cfg.GeminiAPIKey,
		GeminiModel: cfg.GeminiModel,
		Timeout:     cfg.LLMTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return llm.Close(provider)
		},
	})
	return provider, nil
}

func provideTokenService(cfg *config.Config) *service.TokenService {
	return service.NewTokenService(cfg.JWTSecret)
}

func provideRateLimiter(cfg *config.Config, client *redis.Client, logger *zap.Logger) *middleware.RateLimiter {
	return middleware.NewCravingRateLimiter(client, cfg.RateLimitPerHour, logger)
}

func provideCravingService(
	cfg *config.Config,
	logger *zap.Logger,
	provider llm.Provider,
	sessions service.SessionStore,
	history *service.HistoryService,
) (*service.CravingService, error) {
	opts := []service.CravingOption{service.WithHistory(history)}
	if cfg.GoogleMapsAPIKey != "" {
		finder, err := places.NewFinder(cfg.GoogleMapsAPIKey, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithRestaurantFinder(finder))
	}
	return service.NewCravingService(provider, recommend.NewExtractor(nil, nil), sessions, logger, opts...), nil
}

func provideMenuService(cfg *config.Config, logger *zap.Logger, provider llm.Provider) (*service.MenuService, error) {
	var archiver service.ImageArchiver
	if cfg.S3BucketName != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		archiver = service.NewS3Archiver(s3Config, logger)
	}
	return service.NewMenuService(provider, nil, archiver, cfg.MaxImageBytes, logger), nil
}

func provideHandlers(
	db *gorm.DB,
	client *redis.Client,
	provider llm.Provider,
	tokens *service.TokenService,
	limiter *middleware.RateLimiter,
	cravings *service.CravingService,
	menus *service.MenuService,
	history *service.HistoryService,
	logger *zap.Logger,
) router.Handlers {
	return router.Handlers{
		Recommendations: api.NewRecommendationHandler(cravings, menus, logger),
		History:         api.NewHistoryHandler(history, tokens),
		Health:          api.NewHealthHandler(db, client, provider.Name()),
		RateLimits:      api.NewRateLimitHandler(limiter),
	}
}

func provideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tokens *service.TokenService,
	limiter *middleware.RateLimiter,
	handlers router.Handlers,
) *gin.Engine {
	return router.SetupRouter(cfg, logger, tokens, limiter, handlers)
}

func provideServer(cfg *config.Config, engine *gin.Engine, logger *zap.Logger) *server.Server {
	return server.New(cfg, engine, logger)
}

func registerServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *server.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil {
					logger.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
