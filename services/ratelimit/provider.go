package ratelimit

import (
	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/fx"
)

func NewProvider(redisClient redis.UniversalClient, logger *logging.Service) *Service {
	return NewService(redisClient, logger)
}

var Module = fx.Options(
	fx.Provide(NewProvider),
)
