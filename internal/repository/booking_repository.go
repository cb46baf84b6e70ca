package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ayanda-dev/studio-booking/internal/model"
)

// BookingRepo provides persistence for bookings.  Status transitions
// that release seats are expressed as conditional updates guarded on
// the current status, so a duplicate cancellation matches no row and
// can never release the same seats twice.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the caller's transaction and
// populates the generated ID.  The caller commits or rolls back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (session_id, client_id, status, seats) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.SessionID, b.ClientID, b.Status, b.Seats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Get returns a booking by id, or ErrBookingNotFound.
func (r *BookingRepo) Get(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT id, session_id, client_id, status, seats, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.SessionID, &b.ClientID, &b.Status, &b.Seats, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetTx is Get within the caller's transaction.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT id, session_id, client_id, status, seats, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.SessionID, &b.ClientID, &b.Status, &b.Seats, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ReleaseTransitionTx moves a booking out of a seated status into the
// terminal newStatus.  The update only matches while the booking still
// holds seats, which makes the transition idempotent: a second call
// for the same booking matches nothing and reports false, and the
// caller must then skip the seat release.
func (r *BookingRepo) ReleaseTransitionTx(ctx context.Context, tx *sql.Tx, bookingID uint64, newStatus string) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status IN ('booked', 'confirmed')`
	res, err := tx.ExecContext(ctx, q, newStatus, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Confirm moves a booking from booked to confirmed.  Both statuses
// hold seats, so no counter changes.  Confirming an already confirmed
// booking is a no-op; confirming a terminal booking reports false.
func (r *BookingRepo) Confirm(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `UPDATE bookings SET status = 'confirmed' WHERE id = ? AND status = 'booked'`
	res, err := r.db.ExecContext(ctx, q, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	b, err := r.Get(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return b.Status == model.BookingConfirmed, nil
}

// UpcomingBooking is a seated booking joined with its slot and client,
// as needed by the reminder and cancellation flows.
type UpcomingBooking struct {
	BookingID  uint64 `json:"booking_id"`
	SessionID  uint64 `json:"session_id"`
	ClientID   uint64 `json:"client_id"`
	ClientName string `json:"client_name"`
	WaNumber   string `json:"wa_number"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	Kind       string `json:"kind"`
	Seats      int    `json:"seats"`
	Status     string `json:"status"`
}

// NextUpcomingByWa returns the soonest future seated booking for the
// client with this WhatsApp number, or ErrBookingNotFound when there
// is none.
func (r *BookingRepo) NextUpcomingByWa(ctx context.Context, waNumber string) (*UpcomingBooking, error) {
	const q = `SELECT b.id, b.session_id, b.client_id, c.name, c.wa_number,
	                  DATE_FORMAT(s.session_date, '%Y-%m-%d'), TIME_FORMAT(s.start_time, '%H:%i'),
	                  s.kind, b.seats, b.status
	           FROM bookings b
	           JOIN sessions s ON s.id = b.session_id
	           JOIN clients  c ON c.id = b.client_id
	           WHERE c.wa_number = ?
	             AND b.status IN ('booked', 'confirmed')
	             AND TIMESTAMP(s.session_date, s.start_time) > UTC_TIMESTAMP()
	           ORDER BY s.session_date, s.start_time
	           LIMIT 1`
	var u UpcomingBooking
	err := r.db.QueryRowContext(ctx, q, waNumber).Scan(
		&u.BookingID, &u.SessionID, &u.ClientID, &u.ClientName, &u.WaNumber,
		&u.Date, &u.StartTime, &u.Kind, &u.Seats, &u.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListBySession returns all bookings for a session, newest first.
func (r *BookingRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Booking, error) {
	const q = `SELECT id, session_id, client_id, status, seats, created_at
	           FROM bookings WHERE session_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.SessionID, &b.ClientID, &b.Status, &b.Seats, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
