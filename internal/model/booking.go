package model

import "time"

// BookingStatus is the approval state of a booking.
type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusAccepted BookingStatus = "accepted"
	StatusRejected BookingStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a booking in state s may move to next.
// Only pending bookings move, and only to a terminal state.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	return s == StatusPending && next.Terminal()
}

// PaymentMethod records how the customer intends to pay.
type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentOffline PaymentMethod = "offline"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool { return m == PaymentOnline || m == PaymentOffline }

// PaymentStatus records whether the booking has been paid for.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool { return p == PaymentPaid || p == PaymentUnpaid }

// Booking records a user's intent to take a diagnostic test at a branch.
// It corresponds to a row in the `bookings` table.
//
// Fields:
//  ID               – opaque identifier (UUID string).
//  UserID           – owning account; never changes after creation.
//  TestRef          – identifier of the catalog test being booked.
//  SelectedLocation – branch chosen by the user for the test.  This is
//                     not the sub-admin's own location, although the two
//                     are compared for visibility.
//  PaymentMethod    – online or offline.
//  PaymentStatus    – paid or unpaid.
//  TransactionID    – payment reference supplied by the client, if any.
//  ReportURL        – link to the report once available, if any.
//  Status           – pending, accepted or rejected.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last status change.
type Booking struct {
	ID               string        `db:"id" json:"id"`
	UserID           string        `db:"user_id" json:"user_id"`
	TestRef          string        `db:"test_ref" json:"test_ref"`
	SelectedLocation string        `db:"selected_location" json:"selected_location"`
	PaymentMethod    PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus    PaymentStatus `db:"payment_status" json:"payment_status"`
	TransactionID    *string       `db:"transaction_id" json:"transaction_id,omitempty"`
	ReportURL        *string       `db:"report_url" json:"report_url,omitempty"`
	Status           BookingStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingDetail is a booking joined with the owning account's display
// fields for the admin listing.
type BookingDetail struct {
	Booking
	UserName  string `db:"user_name" json:"user_name"`
	UserPhone string `db:"user_phone" json:"user_phone"`
}

// BookingRequest carries the client-controlled fields of a new booking.
// Ownership and status are assigned by the server and have no field here.
type BookingRequest struct {
	TestRef          string        `json:"test_ref"`
	SelectedLocation string        `json:"selected_location"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	TransactionID    *string       `json:"transaction_id,omitempty"`
}
