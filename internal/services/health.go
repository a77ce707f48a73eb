package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/pkg/models"
)

// StatsProvider exposes snapshot dimensions for health reporting.
type StatsProvider interface {
	Stats() EngineStats
}

type HealthService struct {
	config *config.Config
	logger *logrus.Logger
	engine StatsProvider
	redis  *redis.Client

	healthCheckStatus *prometheus.GaugeVec
	snapshotSize      *prometheus.GaugeVec
}

// NewHealthService reports on the engine snapshot. redisClient may be nil
// when caching and rate limiting are disabled.
func NewHealthService(cfg *config.Config, logger *logrus.Logger, engine StatsProvider, redisClient *redis.Client) *HealthService {
	hs := &HealthService{
		config: cfg,
		logger: logger,
		engine: engine,
		redis:  redisClient,
		healthCheckStatus: registerCollector(prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hybrec_health_check_status",
			Help: "Health check status (1 = healthy, 0 = unhealthy)",
		}, []string{"service"}), logger),
		snapshotSize: newSnapshotGauge(logger),
	}

	stats := engine.Stats()
	hs.snapshotSize.WithLabelValues("users").Set(float64(stats.Users))
	hs.snapshotSize.WithLabelValues("items").Set(float64(stats.Items))
	hs.snapshotSize.WithLabelValues("interaction_users").Set(float64(stats.InteractionsUsers))
	hs.snapshotSize.WithLabelValues("catalog_items").Set(float64(stats.CatalogItems))

	return hs
}

// CheckHealth reports snapshot counts and hybrid weights. A failing redis
// ping marks the service degraded; the snapshot itself is always served.
func (s *HealthService) CheckHealth(ctx context.Context) *models.HealthResponse {
	stats := s.engine.Stats()
	response := &models.HealthResponse{
		Status:            "UP",
		Users:             stats.Users,
		Items:             stats.Items,
		InteractionsUsers: stats.InteractionsUsers,
		CatalogItems:      stats.CatalogItems,
		HybridWeights: models.HybridWeights{
			CF:      stats.WCF,
			Content: stats.WContent,
		},
		MatrixShapes: stats.MatrixShapes,
		SwappedCF:    stats.SwappedCF,
		Services:     map[string]string{"engine": "healthy"},
		Timestamp:    time.Now(),
	}
	s.UpdateHealthMetrics("engine", true)

	if s.redis != nil {
		if err := s.checkRedis(ctx); err != nil {
			response.Services["redis"] = "unhealthy"
			response.Status = "degraded"
			s.logger.WithError(err).Warn("Non-critical service redis is unhealthy")
			s.UpdateHealthMetrics("redis", false)
		} else {
			response.Services["redis"] = "healthy"
			s.UpdateHealthMetrics("redis", true)
		}
	}

	return response
}

func (s *HealthService) checkRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.redis.Ping(ctx).Err()
}

// UpdateHealthMetrics updates health check metrics
func (s *HealthService) UpdateHealthMetrics(serviceName string, healthy bool) {
	if healthy {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(1)
	} else {
		s.healthCheckStatus.WithLabelValues(serviceName).Set(0)
	}
}
