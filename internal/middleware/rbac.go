package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/prometheus"
)

// RequirePermission allows the request only if the identity's role is in the
// policy the permission maps to.
func RequirePermission(perm access.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var ident *access.Identity
			if found, ok := IdentityFrom(c); ok {
				ident = &found
			}

			if err := access.Authorize(ident, perm); err != nil {
				if apperror.Is(err, apperror.KindInsufficientPermissions) {
					logger.FromContext(c).Info("Permission denied", zap.String("permission", string(perm)))
				}
				prometheus.RecordAuthError(apperror.KindOf(err).Class())
				return err
			}
			return next(c)
		}
	}
}
