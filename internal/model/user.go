package model

import "time"

// Account represents a stored credential record in the `accounts` table.
// All roles share one table so the phone number is unique across users,
// admins and sub-admins alike.
//
// Fields:
//  ID           – opaque identifier (UUID string).
//  DisplayName  – name shown in the admin panel.
//  Phone        – unique login identifier.
//  PasswordHash – bcrypt hash of the password.
//  Role         – user, admin or sub-admin.
//  Location     – branch of a sub-admin (nil for other roles).
//  CreatedAt    – creation timestamp.
type Account struct {
	ID           string    `db:"id"`            // accounts.id
	DisplayName  string    `db:"display_name"`  // accounts.display_name
	Phone        string    `db:"phone"`         // accounts.phone
	PasswordHash string    `db:"password_hash"` // accounts.password_hash
	Role         Role      `db:"role"`          // accounts.role
	Location     *string   `db:"location"`      // accounts.location (nullable)
	CreatedAt    time.Time `db:"created_at"`    // accounts.created_at
}

// LocationValue returns the account's location or an empty string.
func (a Account) LocationValue() string {
	if a.Location == nil {
		return ""
	}
	return *a.Location
}

// Identity derives the session identity for this account.
func (a Account) Identity() (Identity, error) {
	return NewIdentity(a.ID, a.Role, a.LocationValue())
}

// Profile is the public view of an account returned to clients.  It never
// includes the password hash.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Role        Role      `json:"role"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile converts the account to its public view.
func (a Account) Profile() Profile {
	return Profile{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Phone:       a.Phone,
		Role:        a.Role,
		Location:    a.LocationValue(),
		CreatedAt:   a.CreatedAt,
	}
}
