package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
)

var ErrAlreadyExpired = errors.New("token already expired")

const keyPrefix = "blacklist:"

// Service is the revocation ledger: blacklisted token ids live in the shared
// cache with a TTL equal to the token's remaining validity, so an entry never
// outlives the credential it invalidates and the ledger self-prunes.
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

// Blacklist records a token id until expiresAt. Revoking a token that has
// already expired is a no-op.
func (s *Service) Blacklist(ctx context.Context, jti, reason string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return ErrAlreadyExpired
	}

	if err := s.redis.Set(ctx, keyPrefix+jti, reason, ttl).Err(); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to blacklist token", zap.String("jti", jti), zap.Error(err))
		}
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("token blacklisted",
			zap.String("jti", jti),
			zap.String("reason", reason),
			zap.Duration("ttl", ttl))
	}

	return nil
}

func (s *Service) IsBlacklisted(jti string) (bool, error) {
	count, err := s.redis.Exists(context.Background(), keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return count > 0, nil
}
