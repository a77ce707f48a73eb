package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ResultCache is the key/value store behind CachedRecommender. A miss is
// reported as redis.Nil.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisResultCache struct {
	client *redis.Client
}

// NewRedisResultCache adapts a go-redis client to ResultCache.
func NewRedisResultCache(client *redis.Client) ResultCache {
	return &redisResultCache{client: client}
}

func (c *redisResultCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *redisResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedRecommender is a cache-aside wrapper around a Recommender. Cache
// failures are logged and the wrapped recommender is called directly.
type CachedRecommender struct {
	next   Recommender
	cache  ResultCache
	ttl    time.Duration
	logger *logrus.Logger

	lookups *prometheus.CounterVec
}

func NewCachedRecommender(next Recommender, cache ResultCache, ttl time.Duration, logger *logrus.Logger) *CachedRecommender {
	return &CachedRecommender{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		lookups: newCacheCounter(logger),
	}
}

func userCacheKey(userID string, limit int) string {
	return fmt.Sprintf("hybrec:rec:user:%s:%d", userID, limit)
}

func similarCacheKey(itemID string, limit int) string {
	return fmt.Sprintf("hybrec:rec:similar:%s:%d", itemID, limit)
}

func popularCacheKey(limit int) string {
	return fmt.Sprintf("hybrec:rec:popular:%d", limit)
}

func (c *CachedRecommender) ForUser(ctx context.Context, userID string, limit int) Result {
	return c.fetch(ctx, OperationUser, userCacheKey(userID, limit), func() Result {
		return c.next.ForUser(ctx, userID, limit)
	})
}

func (c *CachedRecommender) SimilarTo(ctx context.Context, itemID string, limit int) Result {
	return c.fetch(ctx, OperationSimilar, similarCacheKey(itemID, limit), func() Result {
		return c.next.SimilarTo(ctx, itemID, limit)
	})
}

func (c *CachedRecommender) Popular(ctx context.Context, limit int) Result {
	return c.fetch(ctx, OperationPopular, popularCacheKey(limit), func() Result {
		return c.next.Popular(ctx, limit)
	})
}

func (c *CachedRecommender) fetch(ctx context.Context, operation, key string, compute func() Result) Result {
	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached Result
		if err := json.Unmarshal(data, &cached); err == nil {
			c.lookups.WithLabelValues(operation, "hit").Inc()
			return cached
		}
		c.logger.WithField("key", key).Warn("Discarding undecodable cached recommendation")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WithError(err).WithField("key", key).Warn("Recommendation cache read failed")
	}

	c.lookups.WithLabelValues(operation, "miss").Inc()
	result := compute()

	data, err = json.Marshal(result)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to encode recommendation for cache")
		return result
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Recommendation cache write failed")
	}

	return result
}
