package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/apperror"
	"github.com/thidaswick/WorqHub/prometheus"
)

// RequireTenantContext rejects requests whose identity carries no tenant.
// It must run after AuthMiddleware on every tenant-scoped route group.
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := IdentityFrom(c)
		if !ok {
			prometheus.RecordAuthError("authentication_required")
			return apperror.ErrAuthenticationRequired
		}
		if err := access.RequireTenant(ident); err != nil {
			prometheus.RecordAuthError("tenant_context_missing")
			return err
		}
		return next(c)
	}
}
