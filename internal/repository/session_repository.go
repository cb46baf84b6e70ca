package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/ayanda-dev/studio-booking/internal/model"
)

// SessionRepo owns the sessions table: the catalog of bookable time
// slots and their capacity counters.  Sessions are never deleted;
// closing a slot is a status transition.  All seat counter mutations
// go through the guarded Tx methods so that capacity can never be
// exceeded by concurrent writers.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning the session and booking repositories.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// Ensure resolves the session id for (date, startTime, kind), creating
// the row on first use.  Repeated calls with the same key return the
// same id.  capacity <= 0 means "use the default for this kind".
//
// The lookup-then-insert race under concurrent creates is resolved by
// the UNIQUE key on (session_date, start_time, kind): the loser of the
// race gets a duplicate-key error and re-reads the winner's row.
func (r *SessionRepo) Ensure(ctx context.Context, date, startTime string, kind model.Kind, capacity int, notes *string) (uint64, error) {
	id, err := r.lookup(ctx, date, startTime, kind)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	if capacity <= 0 {
		capacity = model.DefaultCapacity(kind)
	}
	const ins = `INSERT INTO sessions (session_date, start_time, kind, capacity, booked_count, status, notes)
	             VALUES (?, ?, ?, ?, 0, 'open', ?)`
	res, err := r.db.ExecContext(ctx, ins, date, startTime, string(kind), capacity, notes)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			// lost the create race; the row exists now
			return r.lookup(ctx, date, startTime, kind)
		}
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

func (r *SessionRepo) lookup(ctx context.Context, date, startTime string, kind model.Kind) (uint64, error) {
	const q = `SELECT id FROM sessions WHERE session_date = ? AND start_time = ? AND kind = ? LIMIT 1`
	var id uint64
	err := r.db.QueryRowContext(ctx, q, date, startTime, string(kind)).Scan(&id)
	return id, err
}

// Availability returns the capacity view of a single session.  It
// returns ErrSessionNotFound when the id does not exist.
func (r *SessionRepo) Availability(ctx context.Context, sessionID uint64) (*model.Availability, error) {
	const q = `SELECT id, DATE_FORMAT(session_date, '%Y-%m-%d'), TIME_FORMAT(start_time, '%H:%i'),
	                  kind, capacity, booked_count, status
	           FROM sessions WHERE id = ?`
	var a model.Availability
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(
		&a.SessionID, &a.Date, &a.StartTime, &a.Kind, &a.Capacity, &a.BookedCount, &a.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Available = a.Capacity - a.BookedCount
	if a.Available < 0 {
		a.Available = 0
	}
	return &a, nil
}

// ListDay returns availability records for every session on the given
// date, ordered by start time.
func (r *SessionRepo) ListDay(ctx context.Context, date string) ([]model.Availability, error) {
	const q = `SELECT id, DATE_FORMAT(session_date, '%Y-%m-%d'), TIME_FORMAT(start_time, '%H:%i'),
	                  kind, capacity, booked_count, status
	           FROM sessions
	           WHERE session_date = ?
	           ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailability(rows)
}

// ListOpen returns the next limit open sessions on or after today,
// ordered by date then start time.  Used by admin pickers to suggest
// free slots.
func (r *SessionRepo) ListOpen(ctx context.Context, limit int) ([]model.Availability, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT id, DATE_FORMAT(session_date, '%Y-%m-%d'), TIME_FORMAT(start_time, '%H:%i'),
	                  kind, capacity, booked_count, status
	           FROM sessions
	           WHERE session_date >= UTC_DATE() AND status = 'open'
	           ORDER BY session_date, start_time
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailability(rows)
}

func scanAvailability(rows *sql.Rows) ([]model.Availability, error) {
	out := make([]model.Availability, 0)
	for rows.Next() {
		var a model.Availability
		if err := rows.Scan(&a.SessionID, &a.Date, &a.StartTime, &a.Kind, &a.Capacity, &a.BookedCount, &a.Status); err != nil {
			return nil, err
		}
		a.Available = a.Capacity - a.BookedCount
		if a.Available < 0 {
			a.Available = 0
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReserveSeatsTx claims seats on a session with a single conditional
// UPDATE: the counter is incremented only when the post-increment
// value still fits the capacity, and the full flag is flipped in the
// same statement.  It reports false when the guard matched no row,
// meaning another writer took the seats first.
//
// This guarded write is the only capacity check in the system.  Do not
// "simplify" it into a read followed by a write: that reintroduces the
// lost-update race between the availability read and the mutation.
func (r *SessionRepo) ReserveSeatsTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seats int) (bool, error) {
	// status is assigned before booked_count on purpose: MySQL applies
	// SET clauses left to right, so the CASE still sees the old count.
	const q = `UPDATE sessions
	           SET status = CASE WHEN booked_count + ? >= capacity THEN 'full' ELSE status END,
	               booked_count = booked_count + ?
	           WHERE id = ? AND status = 'open' AND booked_count + ? <= capacity`
	res, err := tx.ExecContext(ctx, q, seats, seats, sessionID, seats)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReleaseSeatsTx gives seats back after a booking leaves a seated
// status.  The counter is floored at zero and a full session is
// re-opened in the same statement.
func (r *SessionRepo) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seats int) error {
	const q = `UPDATE sessions
	           SET booked_count = GREATEST(booked_count - ?, 0),
	               status = CASE WHEN status = 'full' THEN 'open' ELSE status END
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, seats, sessionID)
	return err
}
