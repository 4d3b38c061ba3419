package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/prometheus"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into an identity
type TokenVerifier interface {
	ValidateToken(token string) (access.Identity, error)
}

// AuthMiddleware validates the bearer token and attaches the identity to the
// request. Nothing downstream runs without one.
func AuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				prometheus.RecordAuthError("missing_token")
				return apperror.ErrAuthenticationRequired
			}

			// Check if it's a Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				prometheus.RecordAuthError("missing_token")
				return apperror.ErrAuthenticationRequired
			}

			ident, err := verifier.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return apperror.ErrInvalidCredential
			}

			SetIdentity(c, ident)
			logger.WithFields(c,
				zap.String("user_id", ident.UserID.String()),
				zap.String("tenant_id", ident.TenantID.String()),
				zap.String("role", string(ident.Role)))

			return next(c)
		}
	}
}

// SetIdentity attaches ident to the echo context and the request context
func SetIdentity(c echo.Context, ident access.Identity) {
	c.Set(identityKey, ident)
	req := c.Request()
	c.SetRequest(req.WithContext(access.WithIdentity(req.Context(), ident)))
}

// IdentityFrom returns the identity attached by AuthMiddleware
func IdentityFrom(c echo.Context) (access.Identity, bool) {
	ident, ok := c.Get(identityKey).(access.Identity)
	return ident, ok
}
