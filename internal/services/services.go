package services

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/artifacts"
	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/internal/messaging"
)

type Services struct {
	Auth        *AuthService
	Health      *HealthService
	RateLimit   *RateLimitService
	Engine      *RecommendationEngine
	Recommender Recommender
	Publisher   messaging.Publisher
}

// New wires the service layer around a loaded snapshot. redisClient may be
// nil, which disables caching and rate limiting.
func New(cfg *config.Config, logger *logrus.Logger, snapshot *artifacts.Snapshot, redisClient *redis.Client, publisher messaging.Publisher) *Services {
	engine := NewRecommendationEngine(snapshot, logger)

	var recommender Recommender = engine
	var rateLimit *RateLimitService
	if redisClient != nil {
		recommender = NewCachedRecommender(engine, NewRedisResultCache(redisClient), cfg.Recommendation.CacheTTL, logger)
		if cfg.RateLimit.Enabled {
			rateLimit = NewRateLimitService(cfg, logger, redisClient)
		}
	} else if cfg.RateLimit.Enabled {
		logger.Warn("Rate limiting requires redis.url, continuing without it")
	}

	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	return &Services{
		Auth:        NewAuthService(cfg, logger),
		Health:      NewHealthService(cfg, logger, engine, redisClient),
		RateLimit:   rateLimit,
		Engine:      engine,
		Recommender: recommender,
		Publisher:   publisher,
	}
}
