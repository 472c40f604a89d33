package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/middleware/tenantctx"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/logging"
)

// RegisterRoutes wires the public and authenticated route groups.
func RegisterRoutes(e *echo.Echo, h *Handler, jwtService *jwt.Service, logger *logging.Service, cfg *config.Config) {
	api := e.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.POST("/validate", h.Validate)

	otpGroup := api.Group("/otp")
	otpGroup.POST("/send", h.SendOTP)
	otpGroup.POST("/verify", h.VerifyOTP)

	oauthGroup := api.Group("/oauth")
	oauthGroup.GET("/:provider", h.InitiateOAuth)
	oauthGroup.GET("/:provider/callback", h.OAuthCallback)

	// API key validation is how resource services check inbound keys; it
	// authenticates by the key itself, not a bearer token.
	api.POST("/apikeys/validate", h.ValidateAPIKey)

	requireTenant := tenantctx.RequireTenant(jwtService, logger, tenantctx.Options{
		TrustInternalHeaders: cfg.Server.TrustInternalHeaders,
	})

	protected := api.Group("", requireTenant)
	protected.POST("/apikeys", h.CreateAPIKey)
	protected.DELETE("/apikeys/:id", h.RevokeAPIKey)

	mfaGroup := protected.Group("/mfa")
	mfaGroup.POST("/totp/enroll", h.EnrollTOTP)
	mfaGroup.POST("/totp/verify", h.VerifyTOTP)
	mfaGroup.POST("/totp/disable", h.DisableTOTP)
	mfaGroup.POST("/backup-codes", h.RegenerateBackupCodes)
}
