package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) InitiateOAuth(c echo.Context) error {
	provider := c.Param("provider")
	redirectURI := c.QueryParam("redirect_uri")
	if redirectURI == "" {
		return badRequest(c, "redirect_uri is required")
	}

	authURL, state, err := h.auth.InitiateOAuth(c.Request().Context(), provider, redirectURI)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"authorization_url": authURL,
		"state":             state,
	})
}

type oauthCallbackResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	NewUser      bool   `json:"new_user"`
}

func (h *Handler) OAuthCallback(c echo.Context) error {
	provider := c.Param("provider")
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	redirectURI := c.QueryParam("redirect_uri")
	if code == "" || state == "" {
		return badRequest(c, "code and state are required")
	}

	result, err := h.auth.CompleteOAuth(c.Request().Context(), provider, code, state, redirectURI)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, oauthCallbackResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    result.Tokens.ExpiresIn,
		NewUser:      result.NewUser,
	})
}
