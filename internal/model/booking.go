package model

import "time"

// Booking status values.  "booked" and "confirmed" hold seats; the
// other four are terminal and release the booking's seats exactly once
// on the transition out of a seated status.
const (
	BookingBooked    = "booked"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingRejected  = "rejected"
	BookingSick      = "sick"
	BookingNoShow    = "no_show"
)

// SeatedStatuses are the booking statuses that count against a
// session's booked_count.
var SeatedStatuses = []string{BookingBooked, BookingConfirmed}

// AbsenceStatus reports whether s is a terminal attendance status an
// admin may mark on a seated booking (everything terminal except a
// plain cancellation).
func AbsenceStatus(s string) bool {
	switch s {
	case BookingRejected, BookingSick, BookingNoShow:
		return true
	}
	return false
}

// Booking is a client's reservation of Seats seats in a session.
type Booking struct {
	ID        uint64    `json:"id"`
	SessionID uint64    `json:"session_id"`
	ClientID  uint64    `json:"client_id"`
	Status    string    `json:"status"`
	Seats     int       `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
}
