package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/saasforge/authcore/services/apikey"
	"github.com/saasforge/authcore/services/auth"
	"github.com/saasforge/authcore/services/logging"
	"github.com/saasforge/authcore/services/otp"
)

// Handler exposes the credential lifecycle over HTTP.
type Handler struct {
	auth    *auth.Service
	apikeys *apikey.Service
	otp     *otp.Service
	logger  *logging.Service
}

func NewHandler(authSvc *auth.Service, apikeySvc *apikey.Service, otpSvc *otp.Service, logger *logging.Service) *Handler {
	return &Handler{
		auth:    authSvc,
		apikeys: apikeySvc,
		otp:     otpSvc,
		logger:  logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	tokens, err := h.auth.Login(c.Request().Context(), auth.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		TOTPCode:  req.TOTPCode,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	if err := h.auth.Logout(c.Request().Context(), req.RefreshToken, bearerToken(c)); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	tokens, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid    bool     `json:"valid"`
	UserID   string   `json:"user_id,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Validate always answers 200. Invalid tokens get {"valid": false} with no
// detail about which check failed.
func (h *Handler) Validate(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	claims, err := h.auth.ValidateToken(req.Token)
	if err != nil {
		return c.JSON(http.StatusOK, validateResponse{Valid: false})
	}

	return c.JSON(http.StatusOK, validateResponse{
		Valid:    true,
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		Email:    claims.Email,
		Roles:    claims.Roles,
	})
}

func bearerToken(c echo.Context) string {
	const prefix = "Bearer "
	header := c.Request().Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
