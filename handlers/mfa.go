package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/saasforge/authcore/middleware/tenantctx"
)

type enrollResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURL string   `json:"provisioning_url"`
	BackupCodes     []string `json:"backup_codes"`
}

func (h *Handler) EnrollTOTP(c echo.Context) error {
	enrollment, err := h.auth.EnrollTOTP(tenantctx.GetUserID(c))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, enrollResponse{
		Secret:          enrollment.Secret,
		ProvisioningURL: enrollment.ProvisioningURL,
		BackupCodes:     enrollment.BackupCodes,
	})
}

type verifyTOTPRequest struct {
	Code string `json:"code"`
}

func (h *Handler) VerifyTOTP(c echo.Context) error {
	var req verifyTOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Code == "" {
		return badRequest(c, "code is required")
	}

	if err := h.auth.VerifyTOTP(tenantctx.GetUserID(c), req.Code); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"valid": true})
}

type disableTOTPRequest struct {
	Password string `json:"password"`
}

func (h *Handler) DisableTOTP(c echo.Context) error {
	var req disableTOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Password == "" {
		return badRequest(c, "password is required")
	}

	if err := h.auth.DisableTOTP(tenantctx.GetUserID(c), req.Password); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "totp disabled"})
}

func (h *Handler) RegenerateBackupCodes(c echo.Context) error {
	codes, err := h.auth.RegenerateBackupCodes(tenantctx.GetUserID(c))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string][]string{"backup_codes": codes})
}
