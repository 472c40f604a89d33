package session

import (
	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/fx"
)

func NewProvider(redisClient redis.UniversalClient, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(redisClient, cfg, logger)
}

var Module = fx.Options(
	fx.Provide(NewProvider),
)
