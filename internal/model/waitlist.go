package model

import "time"

// Waitlist entry reasons.
const (
	WaitlistFull          = "full"           // session had no free seats
	WaitlistSessionClosed = "session_closed" // session was not open for booking
)

// WaitlistEntry records a client who could not be seated in a session.
// Entries are served FIFO by CreatedAt.  An entry holds no seats; it is
// a note for the admin, not a reservation.
type WaitlistEntry struct {
	ID        uint64    `json:"id"`
	SessionID uint64    `json:"session_id"`
	ClientID  uint64    `json:"client_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
