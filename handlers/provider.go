package handlers

import (
	"github.com/saasforge/authcore/services/apikey"
	"github.com/saasforge/authcore/services/auth"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/otp"
	"go.uber.org/fx"
)

func NewProvider(authSvc *auth.Service, apikeySvc *apikey.Service, otpSvc *otp.Service, logger *logging.Service) *Handler {
	return NewHandler(authSvc, apikeySvc, otpSvc, logger)
}

var Module = fx.Options(
	fx.Provide(NewProvider),
)
