package database

import (
	"context"
	"database/sql"
)

// Schema DDL for the booking core.  Statements are idempotent so the
// seeder and the server can both run them at startup.
//
// sessions carries the capacity counters mutated by the guarded UPDATE
// in the booking repository; the UNIQUE key on (session_date,
// start_time, kind) is what makes EnsureSession idempotent under
// concurrent creates.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		wa_number       VARCHAR(32)  NOT NULL,
		name            VARCHAR(120) NOT NULL DEFAULT '',
		plan            VARCHAR(16)  NOT NULL DEFAULT '',
		credits         INT          NOT NULL DEFAULT 0,
		birthday_day    INT          NULL,
		birthday_month  INT          NULL,
		medical_notes   TEXT         NULL,
		notes           VARCHAR(500) NULL,
		household_id    BIGINT UNSIGNED NULL,
		created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_clients_wa (wa_number)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		session_date  DATE        NOT NULL,
		start_time    TIME        NOT NULL,
		kind          VARCHAR(16) NOT NULL,
		capacity      INT         NOT NULL,
		booked_count  INT         NOT NULL DEFAULT 0,
		status        VARCHAR(16) NOT NULL DEFAULT 'open',
		notes         VARCHAR(255) NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_sessions_slot (session_date, start_time, kind),
		KEY idx_sessions_date (session_date)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		session_id  BIGINT UNSIGNED NOT NULL,
		client_id   BIGINT UNSIGNED NOT NULL,
		status      VARCHAR(16) NOT NULL DEFAULT 'booked',
		seats       INT         NOT NULL DEFAULT 1,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_bookings_session (session_id),
		KEY idx_bookings_client (client_id),
		CONSTRAINT fk_bookings_session FOREIGN KEY (session_id) REFERENCES sessions (id),
		CONSTRAINT fk_bookings_client  FOREIGN KEY (client_id)  REFERENCES clients (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS waitlist (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		session_id  BIGINT UNSIGNED NOT NULL,
		client_id   BIGINT UNSIGNED NOT NULL,
		reason      VARCHAR(32) NOT NULL,
		created_at  TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		PRIMARY KEY (id),
		KEY idx_waitlist_session (session_id, created_at),
		CONSTRAINT fk_waitlist_session FOREIGN KEY (session_id) REFERENCES sessions (id),
		CONSTRAINT fk_waitlist_client  FOREIGN KEY (client_id)  REFERENCES clients (id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates the core tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
