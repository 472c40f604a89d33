package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/saasforge/authcore/middleware/tenantctx"
)

type createAPIKeyRequest struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

type createAPIKeyResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateAPIKey issues a scoped key for the authenticated caller. The
// plaintext appears in this response and nowhere else.
func (h *Handler) CreateAPIKey(c echo.Context) error {
	var req createAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}

	plaintext, record, err := h.apikeys.Issue(
		tenantctx.GetUserID(c), tenantctx.GetTenantID(c), req.Name, req.Scopes)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusCreated, createAPIKeyResponse{
		ID:        record.ID,
		Key:       plaintext,
		Name:      record.Name,
		Scopes:    record.ScopeList(),
		ExpiresAt: record.ExpiresAt,
	})
}

func (h *Handler) RevokeAPIKey(c echo.Context) error {
	keyID := c.Param("id")
	if keyID == "" {
		return badRequest(c, "key id is required")
	}

	err := h.apikeys.Revoke(keyID, tenantctx.GetUserID(c), tenantctx.GetTenantID(c))
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "revoked"})
}

type validateAPIKeyRequest struct {
	Key   string `json:"key"`
	Scope string `json:"scope"`
}

type validateAPIKeyResponse struct {
	Valid    bool     `json:"valid"`
	UserID   string   `json:"user_id,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

func (h *Handler) ValidateAPIKey(c echo.Context) error {
	var req validateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Key == "" || req.Scope == "" {
		return badRequest(c, "key and scope are required")
	}

	record, err := h.apikeys.Validate(req.Key, req.Scope)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, validateAPIKeyResponse{
		Valid:    true,
		UserID:   record.UserID,
		TenantID: record.TenantID,
		Scopes:   record.ScopeList(),
	})
}
