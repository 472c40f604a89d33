package tenantctx

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/saasforge/authcore/services/jwt"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
)

const (
	UserIDKey   = "_auth_user_id"
	TenantIDKey = "_auth_tenant_id"
	ClaimsKey   = "_auth_claims"
	TokenKey    = "_auth_token"

	TenantHeader = "X-Tenant-ID"
	UserHeader   = "X-User-ID"
)

// Options controls how the tenant context is established. TrustInternalHeaders
// must only be enabled on deployments where the service sits behind a gateway
// that strips client-supplied identity headers.
type Options struct {
	TrustInternalHeaders bool
}

// RequireTenant authenticates the request and binds the caller's identity to
// the echo context. The default path validates a Bearer token; when the token
// carries a tenant claim and the request also names a tenant, the two must
// agree.
func RequireTenant(jwtService *jwt.Service, logger *logging.Service, opts Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")

			if authHeader == "" && opts.TrustInternalHeaders {
				return trustedHeaderPath(c, next)
			}

			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Bearer token required")
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				// One message for every validation failure. The cause is
				// already logged by the token service; disclosing it here
				// would hand callers an oracle.
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if requested := c.Request().Header.Get(TenantHeader); requested != "" &&
				requested != claims.TenantID {
				if logger != nil {
					logger.Error("SECURITY: cross-tenant access attempt blocked",
						zap.String("user_id", claims.UserID),
						zap.String("token_tenant", claims.TenantID),
						zap.String("requested_tenant", requested))
				}
				return echo.NewHTTPError(http.StatusForbidden, "tenant mismatch")
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(TenantIDKey, claims.TenantID)
			c.Set(ClaimsKey, claims)
			c.Set(TokenKey, tokenString)

			return next(c)
		}
	}
}

// trustedHeaderPath accepts gateway-asserted identity headers without a
// token. Reachable only when Options.TrustInternalHeaders is set.
func trustedHeaderPath(c echo.Context, next echo.HandlerFunc) error {
	userID := c.Request().Header.Get(UserHeader)
	tenantID := c.Request().Header.Get(TenantHeader)
	if userID == "" || tenantID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "identity headers required")
	}

	c.Set(UserIDKey, userID)
	c.Set(TenantIDKey, tenantID)

	return next(c)
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetTenantID(c echo.Context) string {
	if tenantID, ok := c.Get(TenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}

func GetToken(c echo.Context) string {
	if token, ok := c.Get(TokenKey).(string); ok {
		return token
	}
	return ""
}
