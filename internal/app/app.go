package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/artifacts"
	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/internal/database"
	"github.com/temcen/hybrec/internal/handlers"
	"github.com/temcen/hybrec/internal/messaging"
	"github.com/temcen/hybrec/internal/middleware"
	"github.com/temcen/hybrec/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	redis    *redis.Client
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

// New loads the artifact snapshot and wires the HTTP service around it.
// Any failure loading a required artifact is returned.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg)

	snapshot, err := artifacts.Load(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	return NewWithSnapshot(ctx, cfg, logger, snapshot)
}

// NewWithSnapshot wires the service around an already loaded snapshot.
func NewWithSnapshot(ctx context.Context, cfg *config.Config, logger *logrus.Logger, snapshot *artifacts.Snapshot) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	redisClient, err := database.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	app.redis = redisClient

	publisher := messaging.NewPublisher(cfg, logger)

	app.services = services.New(cfg, logger, snapshot, redisClient, publisher)
	app.handlers = handlers.New(cfg, logger, app.services)

	app.setupRouter()

	stats := app.services.Engine.Stats()
	logger.WithFields(logrus.Fields{
		"users":              stats.Users,
		"items":              stats.Items,
		"interactions_users": stats.InteractionsUsers,
		"hybrid_w_cf":        stats.WCF,
		"hybrid_w_content":   stats.WContent,
	}).Info("Recommendation engine ready")

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.Publisher.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing impression publisher")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing Redis connection")
			return err
		}
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Compression(gzip.DefaultCompression))

	// Health check endpoints (no auth required)
	router.GET("/health", a.handlers.Health.Check)

	// Prometheus metrics endpoint (no auth required)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/health", a.handlers.Health.Check)

		if a.config.Auth.Enabled {
			api.Use(middleware.Auth(a.services.Auth, a.logger))
		}
		if a.services.RateLimit != nil {
			api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
		}

		api.GET("/recommendations", a.handlers.Recommendation.ForUser)
		api.POST("/recommendations", a.handlers.Recommendation.ForUserBody)
		api.GET("/items/:itemId/similar", a.handlers.Recommendation.Similar)
		api.GET("/popular", a.handlers.Recommendation.Popular)
	}

	a.router = router
}
