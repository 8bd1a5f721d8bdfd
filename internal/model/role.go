package model

import "fmt"

// Role names the kind of principal behind an account or session.  The set
// is closed: every switch over Role in this module lists all three values
// and treats anything else as an error, so adding a role means revisiting
// each of those switches.
type Role string

const (
	RoleUser     Role = "user"      // end customer who books tests
	RoleAdmin    Role = "admin"     // sees and manages every booking
	RoleSubAdmin Role = "sub-admin" // branch operator scoped to one location
)

// Roles lists every known role in a stable order.
func Roles() []Role { return []Role{RoleUser, RoleAdmin, RoleSubAdmin} }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSubAdmin:
		return true
	default:
		return false
	}
}

// ScopedByLocation reports whether identities of this role carry a branch
// location and only see records for that branch.
func (r Role) ScopedByLocation() bool {
	switch r {
	case RoleSubAdmin:
		return true
	case RoleUser, RoleAdmin:
		return false
	default:
		return false
	}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
