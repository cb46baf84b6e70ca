package repository

import (
	"context"
	"database/sql"

	"github.com/ayanda-dev/studio-booking/internal/model"
)

// WaitlistRepo records clients who could not be seated.  The table is
// append-only; ordering is FIFO by created_at so the earliest waiting
// client is always first in line.  An entry holds no seats.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo returns a WaitlistRepo bound to the given database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// Add appends a waitlist entry and returns its id.
func (r *WaitlistRepo) Add(ctx context.Context, sessionID, clientID uint64, reason string) (uint64, error) {
	const q = `INSERT INTO waitlist (session_id, client_id, reason) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, sessionID, clientID, reason)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListBySession returns a session's waitlist in FIFO order.
func (r *WaitlistRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.WaitlistEntry, error) {
	const q = `SELECT id, session_id, client_id, reason, created_at
	           FROM waitlist WHERE session_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WaitlistEntry, 0)
	for rows.Next() {
		var e model.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ClientID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
