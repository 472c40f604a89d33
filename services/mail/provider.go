package mail

import (
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/fx"
)

// NewProvider returns a nil service when mail is disabled; consumers treat a
// nil sender as "log the message instead".
func NewProvider(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if !cfg.Mail.Enabled {
		if logger != nil {
			logger.Info("mail delivery disabled, one-time codes will be logged only")
		}
		return nil, nil
	}

	return NewService(&cfg.Mail, logger)
}

var Module = fx.Options(
	fx.Provide(NewProvider),
)
