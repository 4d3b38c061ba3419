package access

import (
	"github.com/thidaswick/WorqHub/internal/apperror"
)

// RequireTenant fails with TenantContextMissing when the identity has no tenant
func RequireTenant(ident Identity) error {
	if !ident.HasTenant() {
		return apperror.ErrTenantContextMissing
	}
	return nil
}
