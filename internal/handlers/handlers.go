package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
}

func New(cfg *config.Config, logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(
			services.Recommender,
			services.Publisher,
			cfg.Recommendation.DefaultLimit,
			cfg.Recommendation.MaxLimit,
			logger,
		),
	}
}
