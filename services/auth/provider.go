package auth

import (
	"github.com/redis/go-redis/v9"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/password"
	"github.com/saasforge/authcore/services/ratelimit"
	"github.com/saasforge/authcore/services/revocation"
	"github.com/saasforge/authcore/services/session"
	"github.com/saasforge/authcore/services/totp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Redis      redis.UniversalClient
	Config     *config.Config
	Passwords  *password.Service
	Tokens     *jwt.Service
	Sessions   *session.Service
	Revocation *revocation.Service
	MFA        *totp.Service
	Limiter    *ratelimit.Service
	OAuth      ProviderClient
	Logger     *logging.Service
}

func NewProvider(p Params) *Service {
	return NewService(p.DB, p.Redis, p.Config, p.Passwords, p.Tokens, p.Sessions,
		p.Revocation, p.MFA, p.Limiter, p.OAuth, p.Logger)
}

func NewOAuthClientProvider() ProviderClient {
	return NewMockProviderClient()
}

var Module = fx.Options(
	fx.Provide(NewOAuthClientProvider),
	fx.Provide(NewProvider),
)
