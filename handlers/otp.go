package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type sendOTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

func (h *Handler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Purpose == "" {
		return badRequest(c, "email and purpose are required")
	}

	expiresAt, err := h.otp.Send(c.Request().Context(), req.Email, req.Purpose)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":     "sent",
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}

func (h *Handler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Purpose == "" || req.Code == "" {
		return badRequest(c, "email, purpose, and code are required")
	}

	if err := h.otp.Verify(c.Request().Context(), req.Email, req.Purpose, req.Code); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"valid": true})
}
