package revocation

import (
	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/fx"
)

func NewProvider(redisClient redis.UniversalClient, logger *logging.Service) *Service {
	return NewService(redisClient, logger)
}

func ProvideAsRevocationChecker(svc *Service) jwt.RevocationChecker {
	return svc
}

var Module = fx.Options(
	fx.Provide(NewProvider),
	fx.Provide(ProvideAsRevocationChecker),
)
