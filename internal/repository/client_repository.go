package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ayanda-dev/studio-booking/internal/model"
)

// ClientRepo provides persistence for the client registry.  Clients
// are keyed by their normalized WhatsApp number; the messaging layer
// upserts a minimal row the first time an unknown number writes in.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo returns a ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// NormalizeWa strips everything but digits from a WhatsApp number.
// "+27 84 313-1635" and "27843131635" map to the same key.
func NormalizeWa(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UpsertByWa creates or refreshes a client row keyed by WhatsApp
// number.  The name only overwrites an existing one when a non-empty
// value is supplied, so an admin-entered name survives later contacts
// that arrive without one.  Returns the client id for both paths; the
// LAST_INSERT_ID(id) assignment makes LastInsertId work on updates too.
func (r *ClientRepo) UpsertByWa(ctx context.Context, waNumber, name string) (uint64, error) {
	wa := NormalizeWa(waNumber)
	if wa == "" {
		return 0, errors.New("empty wa number")
	}
	const q = `INSERT INTO clients (wa_number, name) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE
	               id = LAST_INSERT_ID(id),
	               name = IF(VALUES(name) <> '', VALUES(name), name)`
	res, err := r.db.ExecContext(ctx, q, wa, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ExistsByWa reports whether a client row exists for this number.
func (r *ClientRepo) ExistsByWa(ctx context.Context, waNumber string) (bool, error) {
	wa := NormalizeWa(waNumber)
	if wa == "" {
		return false, nil
	}
	const q = `SELECT 1 FROM clients WHERE wa_number = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, wa).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByWa returns the client with this WhatsApp number, or
// ErrClientNotFound.
func (r *ClientRepo) GetByWa(ctx context.Context, waNumber string) (*model.Client, error) {
	const q = `SELECT id, wa_number, name, plan, credits, birthday_day, birthday_month,
	                  medical_notes, notes, household_id
	           FROM clients WHERE wa_number = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, NormalizeWa(waNumber)))
}

// GetByID returns the client with this id, or ErrClientNotFound.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	const q = `SELECT id, wa_number, name, plan, credits, birthday_day, birthday_month,
	                  medical_notes, notes, household_id
	           FROM clients WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *ClientRepo) scanOne(row *sql.Row) (*model.Client, error) {
	var c model.Client
	var bday, bmon sql.NullInt64
	var med, notes sql.NullString
	var hh sql.NullInt64
	err := row.Scan(&c.ID, &c.WaNumber, &c.Name, &c.Plan, &c.Credits, &bday, &bmon, &med, &notes, &hh)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if bday.Valid {
		v := int(bday.Int64)
		c.BirthdayDay = &v
	}
	if bmon.Valid {
		v := int(bmon.Int64)
		c.BirthdayMonth = &v
	}
	if med.Valid {
		c.MedicalNotes = &med.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	if hh.Valid {
		v := uint64(hh.Int64)
		c.HouseholdID = &v
	}
	return &c, nil
}

// FindByName searches clients by case-insensitive name substring.  An
// empty query falls back to a plain paginated listing, which is what
// the admin picker shows before anything is typed.
func (r *ClientRepo) FindByName(ctx context.Context, query string, limit, offset int) ([]model.Client, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	query = strings.TrimSpace(query)
	if query == "" {
		const q = `SELECT id, wa_number, name, plan, credits, birthday_day, birthday_month,
		                  medical_notes, notes, household_id
		           FROM clients ORDER BY name, id LIMIT ? OFFSET ?`
		rows, err := r.db.QueryContext(ctx, q, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return r.scanMany(rows)
	}
	const q = `SELECT id, wa_number, name, plan, credits, birthday_day, birthday_month,
	                  medical_notes, notes, household_id
	           FROM clients
	           WHERE LOWER(name) LIKE LOWER(?)
	           ORDER BY name, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, "%"+query+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *ClientRepo) scanMany(rows *sql.Rows) ([]model.Client, error) {
	out := make([]model.Client, 0)
	for rows.Next() {
		var c model.Client
		var bday, bmon sql.NullInt64
		var med, notes sql.NullString
		var hh sql.NullInt64
		if err := rows.Scan(&c.ID, &c.WaNumber, &c.Name, &c.Plan, &c.Credits, &bday, &bmon, &med, &notes, &hh); err != nil {
			return nil, err
		}
		if bday.Valid {
			v := int(bday.Int64)
			c.BirthdayDay = &v
		}
		if bmon.Valid {
			v := int(bmon.Int64)
			c.BirthdayMonth = &v
		}
		if med.Valid {
			c.MedicalNotes = &med.String
		}
		if notes.Valid {
			c.Notes = &notes.String
		}
		if hh.Valid {
			v := uint64(hh.Int64)
			c.HouseholdID = &v
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
