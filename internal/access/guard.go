// Package access holds the coarse role guard.  It admits or rejects an
// identity purely by role; per-record rules such as sub-admin location
// scoping live with the booking lifecycle.
package access

import (
	"errors"

	"github.com/iliyamo/lab-booking/internal/model"
)

// ErrForbidden is returned when an identity's role, or a sub-admin's
// location, does not permit the requested action.
var ErrForbidden = errors.New("forbidden")

// RoleSet is an immutable set of roles admitted by a guard.
type RoleSet struct {
	user, admin, subAdmin bool
}

// Allow builds a RoleSet from the given roles.  Unknown roles are ignored.
func Allow(roles ...model.Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		switch r {
		case model.RoleUser:
			s.user = true
		case model.RoleAdmin:
			s.admin = true
		case model.RoleSubAdmin:
			s.subAdmin = true
		}
	}
	return s
}

// Contains reports whether r is admitted by the set.
func (s RoleSet) Contains(r model.Role) bool {
	switch r {
	case model.RoleUser:
		return s.user
	case model.RoleAdmin:
		return s.admin
	case model.RoleSubAdmin:
		return s.subAdmin
	default:
		return false
	}
}

// Roles returns the admitted roles in a stable order.
func (s RoleSet) Roles() []model.Role {
	var out []model.Role
	for _, r := range model.Roles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// Common guard sets shared by routes and services.
var (
	Customers = Allow(model.RoleUser)
	Admins    = Allow(model.RoleAdmin)
	Staff     = Allow(model.RoleAdmin, model.RoleSubAdmin)
	Anyone    = Allow(model.RoleUser, model.RoleAdmin, model.RoleSubAdmin)
)

// Authorize returns nil when id's role is in allowed and ErrForbidden
// otherwise.  It has no side effects and never inspects location.
func Authorize(id model.Identity, allowed RoleSet) error {
	if id.IsZero() || !allowed.Contains(id.Role) {
		return ErrForbidden
	}
	return nil
}
