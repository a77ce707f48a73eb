package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/config"
)

// NewRedis connects the cache and rate limit store. It returns a nil client
// when redis.url is empty. An unreachable server is logged and the client
// is still returned so the service can recover once redis comes up.
func NewRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		logger.Info("No Redis URL configured, caching and rate limiting disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.Redis.PoolSize > 0 {
		opts.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.Timeout > 0 {
		opts.DialTimeout = cfg.Redis.Timeout
		opts.ReadTimeout = cfg.Redis.Timeout
		opts.WriteTimeout = cfg.Redis.Timeout
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("addr", opts.Addr).Warn("Redis is unreachable, requests will bypass the cache")
	} else {
		logger.WithField("addr", opts.Addr).Info("Redis connection established")
	}

	return client, nil
}

// NewPostgres opens a small pool for reading interaction history at startup.
func NewPostgres(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	poolConfig.MaxConns = 2
	if cfg.Database.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	logger.Info("PostgreSQL connection established")
	return pool, nil
}
