package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrTOTPRequired       = errors.New("TOTP code required")
	ErrInvalidTOTP        = errors.New("invalid TOTP code")
	ErrNotEnrolled        = errors.New("TOTP not enrolled")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOAuthState  = errors.New("invalid OAuth state parameter")
	ErrUnknownProvider    = errors.New("unsupported OAuth provider")
)
