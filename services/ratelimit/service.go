package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
)

// Service implements fixed-window counters in the shared cache. The window
// TTL is set only on the first increment, so all hits within a window share
// one expiry.
type Service struct {
	redis  redis.UniversalClient
	logger *logging.Service
}

func NewService(redisClient redis.UniversalClient, logger *logging.Service) *Service {
	return &Service{
		redis:  redisClient,
		logger: logger,
	}
}

// Allow increments the counter for key and reports whether the caller is
// still within budget. When the cache is unavailable the limiter fails open:
// throttling is availability-critical for every login, so an outage must not
// block all traffic.
func (s *Service) Allow(ctx context.Context, key string, max int, window time.Duration) bool {
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("rate limit check failed, failing open",
				zap.String("key", key), zap.Error(err))
		}
		return true
	}

	if count == 1 {
		if err := s.redis.Expire(ctx, key, window).Err(); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to set rate limit window, failing open",
					zap.String("key", key), zap.Error(err))
			}
			return true
		}
	}

	if count > int64(max) {
		if s.logger != nil {
			s.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.Int64("count", count),
				zap.Int("max", max))
		}
		return false
	}

	return true
}

// Reset clears the counter, e.g. after a successful login.
func (s *Service) Reset(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key).Err(); err != nil && s.logger != nil {
		s.logger.Warn("failed to reset rate limit counter",
			zap.String("key", key), zap.Error(err))
	}
}
