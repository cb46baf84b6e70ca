// Package queue defines message payloads exchanged over the message broker.
package queue

// Outcome values carried in BookingRecordedEvent.Outcome.
const (
	OutcomeBooked     = "booked"
	OutcomeWaitlisted = "waitlisted"
	OutcomeCancelled  = "cancelled"
)

// BookingRecordedEvent is published whenever the engine records a
// booking outcome.  The WhatsApp notification and reminder layers
// consume these to message clients without querying the primary
// database.
type BookingRecordedEvent struct {
	Outcome    string `json:"outcome"`
	BookingID  uint64 `json:"booking_id,omitempty"`
	WaitlistID uint64 `json:"waitlist_id,omitempty"`
	Reason     string `json:"reason,omitempty"` // waitlist reason, when waitlisted
	ClientID   uint64 `json:"client_id"`
	SessionID  uint64 `json:"session_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	Kind       string `json:"kind"`
	Seats      int    `json:"seats,omitempty"`
	RecordedAt string `json:"recorded_at"`
}
