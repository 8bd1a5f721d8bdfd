// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer for the booking audit trail.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/lab-booking/internal/model"
)

// BookingEventsQueue is the durable queue carrying booking events.
const BookingEventsQueue = "booking.events"

// Event types.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published when a booking is created or changes status.
// It carries enough information for the audit log without querying the
// primary database.
type BookingEvent struct {
	EventID          string              `json:"event_id"`
	Type             string              `json:"type"`
	BookingID        string              `json:"booking_id"`
	UserID           string              `json:"user_id"`
	TestRef          string              `json:"test_ref"`
	SelectedLocation string              `json:"selected_location"`
	PreviousStatus   model.BookingStatus `json:"previous_status,omitempty"`
	Status           model.BookingStatus `json:"status"`
	ActorID          string              `json:"actor_id"`
	ActorRole        model.Role          `json:"actor_role"`
	OccurredAt       string              `json:"occurred_at"`
}

// NewBookingEvent fills in the event ID and timestamp for b.
func NewBookingEvent(kind string, b model.Booking, prev model.BookingStatus, actor model.Identity) BookingEvent {
	return BookingEvent{
		EventID:          uuid.NewString(),
		Type:             kind,
		BookingID:        b.ID,
		UserID:           b.UserID,
		TestRef:          b.TestRef,
		SelectedLocation: b.SelectedLocation,
		PreviousStatus:   prev,
		Status:           b.Status,
		ActorID:          actor.ID,
		ActorRole:        actor.Role,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	}
}
