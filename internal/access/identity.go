package access

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the verified {user, tenant, role} tuple for one request.
// It is built once by the auth middleware from a validated token and passed
// by value; it must never be cached beyond the request.
type Identity struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     Role      `json:"role"`
}

// HasTenant reports whether the identity carries a tenant id
func (i Identity) HasTenant() bool {
	return i.TenantID != uuid.Nil
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the identity
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// FromContext returns the identity stored by WithIdentity
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(Identity)
	return ident, ok
}
