package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/saasforge/authcore/services/apikey"
	"github.com/saasforge/authcore/services/auth"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/otp"
	"github.com/saasforge/authcore/services/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

// httpError collapses service sentinels into a small set of responses.
// Authentication failures share one message so callers cannot probe which
// check rejected them.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrTOTPRequired):
		return c.JSON(http.StatusPreconditionRequired, errorResponse{Error: "totp_required"})

	case errors.Is(err, auth.ErrRateLimited), errors.Is(err, otp.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many attempts"})

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidTOTP),
		errors.Is(err, jwt.ErrExpiredToken),
		errors.Is(err, jwt.ErrMalformedToken),
		errors.Is(err, jwt.ErrInvalidSignature),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrTokenRevoked),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, apikey.ErrInvalidKey),
		errors.Is(err, otp.ErrInvalidCode):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication failed"})

	case errors.Is(err, session.ErrReuseDetected),
		errors.Is(err, auth.ErrInvalidOAuthState):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "access denied"})

	case errors.Is(err, apikey.ErrInsufficientScope):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "insufficient scope"})

	case errors.Is(err, apikey.ErrKeyNotFound), errors.Is(err, auth.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})

	case errors.Is(err, auth.ErrNotEnrolled),
		errors.Is(err, auth.ErrUnknownProvider),
		errors.Is(err, session.ErrMalformedToken),
		errors.Is(err, apikey.ErrInvalidScope):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}
