package access

import (
	"github.com/thidaswick/WorqHub/internal/apperror"
)

// Policy is a named set of roles allowed to perform an operation class
type Policy struct {
	name  string
	roles map[Role]struct{}
}

// NewPolicy builds a policy from roles. Unknown roles are dropped so a
// policy can never admit a role outside the enumeration.
func NewPolicy(name string, roles ...Role) Policy {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return Policy{name: name, roles: set}
}

// Standing policies
var (
	AdminOnly = NewPolicy("admin_only", RoleAdmin)
	ManagerUp = NewPolicy("manager_up", RoleAdmin, RoleManager)
	AnyRole   = NewPolicy("any_role", RoleAdmin, RoleManager, RoleStaff)
	denyAll   = NewPolicy("deny_all")
)

// Name returns the policy name
func (p Policy) Name() string {
	return p.name
}

// Allows reports whether the role is in the policy
func (p Policy) Allows(r Role) bool {
	_, ok := p.roles[r]
	return ok
}

// Authorize checks the identity against the policy. A nil identity means
// authentication has not happened yet.
func (p Policy) Authorize(ident *Identity) error {
	if ident == nil {
		return apperror.ErrAuthenticationRequired
	}
	if !p.Allows(ident.Role) {
		return apperror.ErrInsufficientPermissions
	}
	return nil
}

// Permission is an operation class checked by the role policy
type Permission string

const (
	PermRecordsRead   Permission = "records:read"
	PermRecordsWrite  Permission = "records:write"
	PermRecordsDelete Permission = "records:delete"
	PermBillingWrite  Permission = "billing:write"
	PermReportsView   Permission = "reports:view"
	PermTenantsAdmin  Permission = "tenants:admin"
)

// Permissions lists every declared permission
var Permissions = []Permission{
	PermRecordsRead,
	PermRecordsWrite,
	PermRecordsDelete,
	PermBillingWrite,
	PermReportsView,
	PermTenantsAdmin,
}

var permissionTable = map[Permission]Policy{
	PermRecordsRead:   AnyRole,
	PermRecordsWrite:  AnyRole,
	PermRecordsDelete: ManagerUp,
	PermBillingWrite:  ManagerUp,
	PermReportsView:   ManagerUp,
	PermTenantsAdmin:  AdminOnly,
}

// PolicyFor returns the policy for a permission; unknown permissions deny everyone
func PolicyFor(perm Permission) Policy {
	if p, ok := permissionTable[perm]; ok {
		return p
	}
	return denyAll
}

// Authorize checks the identity against the policy of a permission
func Authorize(ident *Identity, perm Permission) error {
	return PolicyFor(perm).Authorize(ident)
}
