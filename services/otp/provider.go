package otp

import (
	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/mail"
	"github.com/saasforge/authcore/services/ratelimit"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config  *config.Config
	Redis   redis.UniversalClient
	Limiter *ratelimit.Service
	Mailer  *mail.Service `optional:"true"`
	Logger  *logging.Service
}

func NewProvider(p Params) *Service {
	return NewService(p.Config, p.Redis, p.Limiter, p.Mailer, p.Logger)
}

var Module = fx.Options(
	fx.Provide(NewProvider),
)
