package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/pkg/models"
)

// slidingWindow trims the window, admits the request when there is room and
// returns the count before admission together with the oldest score still in
// the window. Scores are unix milliseconds. Rejected requests are not
// recorded, so a client that keeps retrying does not extend its own penalty.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
end
redis.call('PEXPIRE', key, window)

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {count, oldest}
`)

// RateLimitService is a redis sliding-window limiter keyed by client.
type RateLimitService struct {
	limit  int
	window time.Duration
	logger *logrus.Logger
	redis  redis.Scripter
}

func NewRateLimitService(cfg *config.Config, logger *logrus.Logger, redisClient *redis.Client) *RateLimitService {
	return &RateLimitService{
		limit:  cfg.RateLimit.Requests,
		window: cfg.RateLimit.Window,
		logger: logger,
		redis:  redisClient,
	}
}

func rateLimitKey(clientID string) string {
	return fmt.Sprintf("hybrec:rate_limit:%s", clientID)
}

// IsAllowed records one request for clientID and reports whether it fits in
// the client's window. When redis is unreachable the request is admitted.
func (s *RateLimitService) IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error) {
	now := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	reply, err := slidingWindow.Run(ctx, s.redis,
		[]string{rateLimitKey(clientID)},
		now.UnixMilli(), s.window.Milliseconds(), s.limit, uuid.NewString(),
	).Int64Slice()
	if err == nil && len(reply) != 2 {
		err = fmt.Errorf("unexpected rate limit reply of length %d", len(reply))
	}
	if err != nil {
		s.logger.WithError(err).WithField("client_id", clientID).Error("Rate limit check failed, admitting request")
		return true, &models.RateLimitInfo{
			Limit:     s.limit,
			Remaining: s.limit - 1,
			ResetTime: now.Add(s.window).Unix(),
		}, nil
	}

	used := int(reply[0])
	info := &models.RateLimitInfo{
		Limit:     s.limit,
		Remaining: max(s.limit-used-1, 0),
		ResetTime: time.UnixMilli(reply[1]).Add(s.window).Unix(),
	}
	return used < s.limit, info, nil
}
