package model

import (
	"errors"
	"strings"
)

// ErrInvalidIdentity is returned when an identity's location does not
// agree with its role.
var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the authenticated principal for a single request.  It is
// rebuilt from a verified session token every time and never stored.
//
// Fields:
//  ID       – opaque account identifier.
//  Role     – the account's role at the time the token was issued.
//  Location – branch of a sub-admin; empty for every other role.
type Identity struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Location string `json:"location,omitempty"`
}

// NewIdentity builds an Identity and enforces that a location is present
// exactly when the role is location scoped.
func NewIdentity(id string, role Role, location string) (Identity, error) {
	id = strings.TrimSpace(id)
	location = strings.TrimSpace(location)
	if id == "" || !role.Valid() {
		return Identity{}, ErrInvalidIdentity
	}
	if role.ScopedByLocation() != (location != "") {
		return Identity{}, ErrInvalidIdentity
	}
	return Identity{ID: id, Role: role, Location: location}, nil
}

// IsZero reports whether the identity is the zero value.
func (i Identity) IsZero() bool { return i.ID == "" }
