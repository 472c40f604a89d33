package jwt

import (
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/fx"
)

func NewJWTService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(cfg, logger)
}

type OptionalRevocationChecker struct {
	fx.In
	Checker RevocationChecker `optional:"true"`
}

func WireRevocationChecker(svc *Service, opt OptionalRevocationChecker) {
	if svc != nil && opt.Checker != nil {
		svc.SetRevocationChecker(opt.Checker)
	}
}

var Module = fx.Options(
	fx.Provide(NewJWTService),
	fx.Invoke(WireRevocationChecker),
)
