package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lab-booking/internal/model"
)

// BookingRepo provides persistence for bookings.  Visibility filters are
// expressed in the WHERE clause of each query so that rows outside a
// caller's scope are never loaded.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.user_id, b.test_ref, b.selected_location, b.payment_method,
       b.payment_status, b.transaction_id, b.report_url, b.status, b.created_at, b.updated_at`

const bookingDetailSelect = `SELECT ` + bookingColumns + `,
       a.display_name AS user_name, a.phone AS user_phone
FROM bookings b
JOIN accounts a ON a.id = b.user_id`

// Create inserts b.  ID, Status, CreatedAt and UpdatedAt are assigned by
// the repository; the caller's values for them are overwritten.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.Status = model.StatusPending
	b.CreatedAt = now
	b.UpdatedAt = now
	const q = `INSERT INTO bookings (id, user_id, test_ref, selected_location, payment_method,
        payment_status, transaction_id, report_url, status, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.UserID, b.TestRef, b.SelectedLocation, b.PaymentMethod,
		b.PaymentStatus, b.TransactionID, b.ReportURL, b.Status, b.CreatedAt, b.UpdatedAt)
	return err
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	var b model.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id)
	return b, notFound(err)
}

// ListByUser returns the bookings owned by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	out := []model.Booking{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+bookingColumns+` FROM bookings b WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id`, userID)
	return out, err
}

// ListAll returns every booking joined with its owner's display fields.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	err := r.db.SelectContext(ctx, &out, bookingDetailSelect+` ORDER BY b.created_at DESC, b.id`)
	return out, err
}

// ListByLocation returns only the bookings whose selected location equals
// location, joined with their owner's display fields.
func (r *BookingRepo) ListByLocation(ctx context.Context, location string) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	err := r.db.SelectContext(ctx, &out,
		bookingDetailSelect+` WHERE b.selected_location = ? ORDER BY b.created_at DESC, b.id`, location)
	return out, err
}

// TransitionStatus moves a pending booking to next in one conditional
// UPDATE keyed on id and status = 'pending'.  When location is non-empty
// the row must also have that selected location.  If no row matched,
// ErrStatusConflict is returned; of two concurrent transitions on the same
// booking at most one succeeds.
func (r *BookingRepo) TransitionStatus(ctx context.Context, id string, next model.BookingStatus, location string) error {
	q := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	args := []interface{}{next, time.Now().UTC(), id, model.StatusPending}
	if location != "" {
		q += ` AND selected_location = ?`
		args = append(args, location)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}
