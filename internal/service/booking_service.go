package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/iliyamo/lab-booking/internal/access"
	"github.com/iliyamo/lab-booking/internal/model"
	"github.com/iliyamo/lab-booking/internal/queue"
	"github.com/iliyamo/lab-booking/internal/repository"
)

// BookingStore is the persistence needed by BookingService.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.BookingDetail, error)
	ListByLocation(ctx context.Context, location string) ([]model.BookingDetail, error)
	TransitionStatus(ctx context.Context, id string, next model.BookingStatus, location string) error
}

// EventPublisher delivers booking events to the audit trail.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// BookingService owns the booking lifecycle: creation by customers,
// listings scoped by role, and the pending -> accepted|rejected decision
// made by staff.
type BookingService struct {
	Bookings BookingStore
	// Events may be nil, in which case no events are published.
	Events EventPublisher
}

func NewBookingService(bookings BookingStore, events EventPublisher) *BookingService {
	return &BookingService{Bookings: bookings, Events: events}
}

// Column widths of the bookings table.
const (
	maxTestRefLen       = 64
	maxLocationLen      = 120
	maxTransactionIDLen = 128
)

func validateBooking(req model.BookingRequest) error {
	v := validator{}
	v.check(strings.TrimSpace(req.TestRef) != "", "test_ref", "required")
	v.check(len(req.TestRef) <= maxTestRefLen, "test_ref", "too long")
	v.check(strings.TrimSpace(req.SelectedLocation) != "", "selected_location", "required")
	v.check(len(req.SelectedLocation) <= maxLocationLen, "selected_location", "too long")
	v.check(req.PaymentMethod.Valid(), "payment_method", "must be online or offline")
	v.check(req.PaymentStatus.Valid(), "payment_status", "must be paid or unpaid")
	if req.PaymentMethod == model.PaymentOnline && req.PaymentStatus == model.PaymentPaid {
		v.check(req.TransactionID != nil && strings.TrimSpace(*req.TransactionID) != "",
			"transaction_id", "required for a paid online booking")
	}
	if req.TransactionID != nil {
		v.check(len(strings.TrimSpace(*req.TransactionID)) <= maxTransactionIDLen, "transaction_id", "too long")
	}
	return v.err()
}

// Create records a new pending booking owned by the caller.  Only
// customers may create bookings.
func (s *BookingService) Create(ctx context.Context, caller model.Identity, req model.BookingRequest) (model.Booking, error) {
	if err := access.Authorize(caller, access.Customers); err != nil {
		return model.Booking{}, err
	}
	if err := validateBooking(req); err != nil {
		return model.Booking{}, err
	}
	b := model.Booking{
		UserID:           caller.ID,
		TestRef:          strings.TrimSpace(req.TestRef),
		SelectedLocation: strings.TrimSpace(req.SelectedLocation),
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    req.PaymentStatus,
		TransactionID:    trimmed(req.TransactionID),
		Status:           model.StatusPending,
	}
	if err := s.Bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingCreated, b, "", caller))
	return b, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ListForOwner returns the caller's own bookings.
func (s *BookingService) ListForOwner(ctx context.Context, caller model.Identity) ([]model.Booking, error) {
	if err := access.Authorize(caller, access.Customers); err != nil {
		return nil, err
	}
	out, err := s.Bookings.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// ListForAdmin returns every booking to an admin and only the bookings at
// the caller's location to a sub-admin.
func (s *BookingService) ListForAdmin(ctx context.Context, caller model.Identity) ([]model.BookingDetail, error) {
	if err := access.Authorize(caller, access.Staff); err != nil {
		return nil, err
	}
	var (
		out []model.BookingDetail
		err error
	)
	switch caller.Role {
	case model.RoleAdmin:
		out, err = s.Bookings.ListAll(ctx)
	case model.RoleSubAdmin:
		out, err = s.Bookings.ListByLocation(ctx, caller.Location)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// Get returns one booking if the caller may see it.  A customer asking
// for someone else's booking gets ErrNotFound; a sub-admin asking for a
// booking at another location gets ErrForbidden.
func (s *BookingService) Get(ctx context.Context, caller model.Identity, id string) (model.Booking, error) {
	if err := access.Authorize(caller, access.Anyone); err != nil {
		return model.Booking{}, err
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	switch caller.Role {
	case model.RoleAdmin:
	case model.RoleSubAdmin:
		if b.SelectedLocation != caller.Location {
			return model.Booking{}, ErrForbidden
		}
	case model.RoleUser:
		if b.UserID != caller.ID {
			return model.Booking{}, ErrNotFound
		}
	default:
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

func (s *BookingService) load(ctx context.Context, id string) (model.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

// UpdateStatus accepts or rejects a pending booking.
//
// Checks run in this order: role, existence, target status, sub-admin
// location, current status.  The write itself is conditional on the
// booking still being pending, so when two staff members decide the same
// booking concurrently exactly one succeeds and the other receives
// ErrInvalidStatus.
func (s *BookingService) UpdateStatus(ctx context.Context, caller model.Identity, id string, next model.BookingStatus) (model.Booking, error) {
	if err := access.Authorize(caller, access.Staff); err != nil {
		return model.Booking{}, err
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !next.Terminal() {
		return model.Booking{}, ErrInvalidStatus
	}
	scope := ""
	if caller.Role.ScopedByLocation() {
		if b.SelectedLocation != caller.Location {
			return model.Booking{}, ErrForbidden
		}
		scope = caller.Location
	}
	if !b.Status.CanTransition(next) {
		return model.Booking{}, ErrInvalidStatus
	}
	if err := s.Bookings.TransitionStatus(ctx, id, next, scope); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return model.Booking{}, ErrInvalidStatus
		}
		return model.Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	updated, err := s.load(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingStatusChanged, updated, b.Status, caller))
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		log.Printf("booking %s: publish %s failed: %v", ev.BookingID, ev.Type, err)
	}
}
