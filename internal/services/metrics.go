package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// registerCollector registers c with the default registry, returning the
// already registered collector when an identical one exists. Engines built
// repeatedly in one process (tests, reloads) share their series.
func registerCollector[T prometheus.Collector](c T, logger *logrus.Logger) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		if logger != nil {
			logger.WithError(err).Warn("Failed to register metric")
		}
	}
	return c
}

func newOutcomeCounter(logger *logrus.Logger) *prometheus.CounterVec {
	return registerCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hybrec_recommendation_outcomes_total",
		Help: "Terminal state reached by each recommendation request",
	}, []string{"operation", "state"}), logger)
}

func newLatencyHistogram(logger *logrus.Logger) *prometheus.HistogramVec {
	return registerCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hybrec_recommendation_duration_seconds",
		Help:    "Time spent scoring and ranking a recommendation request",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"operation"}), logger)
}

func newSnapshotGauge(logger *logrus.Logger) *prometheus.GaugeVec {
	return registerCollector(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hybrec_snapshot_size",
		Help: "Number of users, items and interactions in the loaded snapshot",
	}, []string{"kind"}), logger)
}

func newCacheCounter(logger *logrus.Logger) *prometheus.CounterVec {
	return registerCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hybrec_recommendation_cache_total",
		Help: "Recommendation cache lookups by result",
	}, []string{"operation", "result"}), logger)
}
