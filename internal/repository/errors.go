// Package repository defines sentinel error values shared across the
// data access layer. Higher layers use these to distinguish failure
// scenarios: a missing session is fatal to the call, while a duplicate
// cancellation is recovered into a no-op result rather than surfaced
// as an error. Anything else coming out of a repository is a storage
// error and propagates unwrapped so the caller can decide on retries.
package repository

import "errors"

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrClientNotFound is returned when a client lookup matches nothing.
var ErrClientNotFound = errors.New("client not found")

// ErrCapacityExceeded is returned when the requested seat count can
// never fit the session, even empty. Such requests are rejected
// outright instead of being waitlisted.
var ErrCapacityExceeded = errors.New("seats exceed session capacity")
