package access

import "strings"

// Role governs which operation classes a user may perform inside a tenant
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
)

// DefaultRole is assigned when registration does not name one
const DefaultRole = RoleStaff

// Roles lists every known role, highest privilege first
var Roles = []Role{RoleAdmin, RoleManager, RoleStaff}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// ParseRole matches s case-insensitively against the known roles
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}
