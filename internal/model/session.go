package model

// Kind classifies a bookable session.  It decides the default seat
// capacity of a freshly created session and the number of seats a
// booking claims when the caller does not say otherwise.
type Kind string

const (
	KindSingle Kind = "single" // one-on-one class
	KindDuo    Kind = "duo"    // two clients sharing a slot
	KindGroup  Kind = "group"  // open group class
)

// Valid reports whether k is one of the known session kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSingle, KindDuo, KindGroup:
		return true
	}
	return false
}

// DefaultCapacity returns the seat capacity a new session of this kind
// receives when none is supplied explicitly.
func DefaultCapacity(k Kind) int {
	switch k {
	case KindSingle:
		return 1
	case KindDuo:
		return 2
	default:
		return 6
	}
}

// DefaultSeats returns how many seats a booking of this kind claims by
// default.  A duo booking reserves both seats at once; group bookings
// are per person.
func DefaultSeats(k Kind) int {
	if k == KindDuo {
		return 2
	}
	return 1
}

// Session status values.  "full" is a cached view of
// booked_count >= capacity and is re-opened when seats are released.
const (
	SessionOpen      = "open"
	SessionFull      = "full"
	SessionCancelled = "cancelled"
	SessionCompleted = "completed"
)

// Session is a single bookable time slot.  Identity is the unique
// triple (Date, StartTime, Kind); two kinds at the same slot are
// distinct sessions with independent capacity accounting.
//
// Invariant: 0 <= BookedCount <= Capacity, and BookedCount equals the
// summed seats of this session's bookings in a seated status.
type Session struct {
	ID          uint64  `json:"id"`
	Date        string  `json:"date"`       // sessions.session_date ("2006-01-02")
	StartTime   string  `json:"start_time"` // sessions.start_time ("15:04:05" UTC)
	Kind        Kind    `json:"kind"`
	Capacity    int     `json:"capacity"`
	BookedCount int     `json:"booked_count"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
}

// Availability is the caller-facing view of a session's remaining
// seats.  Available is never negative even if counters drift.
type Availability struct {
	SessionID   uint64 `json:"session_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	Kind        Kind   `json:"kind"`
	Capacity    int    `json:"capacity"`
	BookedCount int    `json:"booked_count"`
	Available   int    `json:"available"`
	Status      string `json:"status"`
}
