// Package booking implements the reservation engine: capacity-guarded
// seat booking, idempotent cancellation, attendance transitions and
// batch expansion of recurring weekly bookings.
//
// Every mutating call is one short transaction: the guarded counter
// update and its dependent booking row share a commit, and any failure
// rolls the whole call back.  Capacity correctness rests entirely on
// the conditional UPDATE in SessionRepo.ReserveSeatsTx; the engine
// holds no locks of its own.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayanda-dev/studio-booking/internal/model"
	"github.com/ayanda-dev/studio-booking/internal/queue"
	"github.com/ayanda-dev/studio-booking/internal/repository"
	"github.com/ayanda-dev/studio-booking/internal/schedule"
)

// Result statuses reported to callers.  Waitlisting is a normal
// outcome, not an error; the messaging layer decides the wording.
const (
	StatusBooked           = "booked"
	StatusWaitlisted       = "waitlisted"
	StatusCancelled        = "cancelled"
	StatusAlreadyCancelled = "already_cancelled"
	StatusRejected         = "rejected"
)

// ErrNotConfirmable is returned by Confirm when the booking is in a
// terminal status and cannot be confirmed.
var ErrNotConfirmable = errors.New("booking is not in a confirmable status")

// PublishFunc forwards a recorded outcome to the message broker.  A
// nil PublishFunc disables publishing; a failing one is logged by the
// publisher and otherwise ignored, since the outcome is already
// committed.
type PublishFunc func(context.Context, queue.BookingRecordedEvent) error

// Service wires the session catalog, booking store and waitlist into
// the booking operations the transport layer exposes.
type Service struct {
	sessions *repository.SessionRepo
	bookings *repository.BookingRepo
	waitlist *repository.WaitlistRepo
	publish  PublishFunc
}

// NewService constructs a Service.  publish may be nil.
func NewService(sessions *repository.SessionRepo, bookings *repository.BookingRepo, waitlist *repository.WaitlistRepo, publish PublishFunc) *Service {
	if sessions == nil || bookings == nil || waitlist == nil {
		panic("nil repository passed to NewService")
	}
	return &Service{sessions: sessions, bookings: bookings, waitlist: waitlist, publish: publish}
}

// Result is the outcome of a single booking attempt.
type Result struct {
	Status         string     `json:"status"`
	BookingID      uint64     `json:"booking_id,omitempty"`
	WaitlistID     uint64     `json:"waitlist_id,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	SessionID      uint64     `json:"session_id"`
	Date           string     `json:"date"`
	StartTime      string     `json:"start_time"`
	Kind           model.Kind `json:"kind"`
	Seats          int        `json:"seats"`
	AvailableAfter int        `json:"available_after"`
}

// BookClient resolves (date, time, kind) to a session, creating it on
// first use, and books seats for the client.  seats <= 0 means the
// default seat count for the kind.  The time accepts the same loose
// spellings as the chat flows ("9am", "09h00", ...).
func (s *Service) BookClient(ctx context.Context, clientID uint64, date, startTime string, kind model.Kind, seats int) (*Result, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown session kind: %q", kind)
	}
	norm, err := schedule.ParseTime(startTime)
	if err != nil {
		return nil, err
	}
	sessionID, err := s.sessions.Ensure(ctx, date, norm, kind, 0, nil)
	if err != nil {
		return nil, err
	}
	if seats <= 0 {
		seats = model.DefaultSeats(kind)
	}
	return s.BookSession(ctx, clientID, sessionID, seats)
}

// BookSession books seats on an existing session.
//
// Outcomes: a session that is not open waitlists with reason
// session_closed; a request that can never fit the session is
// rejected with ErrCapacityExceeded; otherwise the guarded counter
// update either seats the client or, when it matches no row because a
// concurrent writer got there first, falls through to the waitlist
// with reason full.
func (s *Service) BookSession(ctx context.Context, clientID, sessionID uint64, seats int) (*Result, error) {
	avail, err := s.sessions.Availability(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if seats <= 0 {
		seats = model.DefaultSeats(avail.Kind)
	}

	if avail.Status != model.SessionOpen && avail.Status != model.SessionFull {
		return s.waitlisted(ctx, clientID, avail, seats, model.WaitlistSessionClosed)
	}
	if seats > avail.Capacity {
		return nil, repository.ErrCapacityExceeded
	}

	tx, err := s.sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	reserved, err := s.sessions.ReserveSeatsTx(ctx, tx, sessionID, seats)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// availability changed under us, or the session was already full
		_ = tx.Rollback()
		return s.waitlisted(ctx, clientID, avail, seats, model.WaitlistFull)
	}

	b := &model.Booking{SessionID: sessionID, ClientID: clientID, Status: model.BookingBooked, Seats: seats}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	after := avail.Capacity - avail.BookedCount - seats
	if after < 0 {
		after = 0
	}
	res := &Result{
		Status:         StatusBooked,
		BookingID:      b.ID,
		SessionID:      sessionID,
		Date:           avail.Date,
		StartTime:      avail.StartTime,
		Kind:           avail.Kind,
		Seats:          seats,
		AvailableAfter: after,
	}
	s.record(ctx, queue.BookingRecordedEvent{
		Outcome:   queue.OutcomeBooked,
		BookingID: b.ID,
		ClientID:  clientID,
		SessionID: sessionID,
		Date:      avail.Date,
		StartTime: avail.StartTime,
		Kind:      string(avail.Kind),
		Seats:     seats,
	})
	return res, nil
}

func (s *Service) waitlisted(ctx context.Context, clientID uint64, avail *model.Availability, seats int, reason string) (*Result, error) {
	wlID, err := s.waitlist.Add(ctx, avail.SessionID, clientID, reason)
	if err != nil {
		return nil, err
	}
	s.record(ctx, queue.BookingRecordedEvent{
		Outcome:    queue.OutcomeWaitlisted,
		WaitlistID: wlID,
		Reason:     reason,
		ClientID:   clientID,
		SessionID:  avail.SessionID,
		Date:       avail.Date,
		StartTime:  avail.StartTime,
		Kind:       string(avail.Kind),
		Seats:      seats,
	})
	return &Result{
		Status:     StatusWaitlisted,
		WaitlistID: wlID,
		Reason:     reason,
		SessionID:  avail.SessionID,
		Date:       avail.Date,
		StartTime:  avail.StartTime,
		Kind:       avail.Kind,
		Seats:      seats,
	}, nil
}

// CancelResult is the outcome of a cancellation or attendance mark.
type CancelResult struct {
	Status        string `json:"status"`
	BookingID     uint64 `json:"booking_id"`
	SessionID     uint64 `json:"session_id"`
	ReleasedSeats int    `json:"released_seats"`
}

// Cancel marks a booking cancelled and releases its seats back to the
// session.  Cancelling twice is a no-op reported as
// already_cancelled; the seats are released exactly once.
func (s *Service) Cancel(ctx context.Context, bookingID uint64) (*CancelResult, error) {
	return s.release(ctx, bookingID, model.BookingCancelled)
}

// MarkAbsent records an attendance outcome (sick, no_show or
// rejected) on a seated booking, releasing its seats with the same
// once-only mechanics as Cancel.
func (s *Service) MarkAbsent(ctx context.Context, bookingID uint64, status string) (*CancelResult, error) {
	if !model.AbsenceStatus(status) {
		return nil, fmt.Errorf("invalid attendance status: %q", status)
	}
	return s.release(ctx, bookingID, status)
}

func (s *Service) release(ctx context.Context, bookingID uint64, newStatus string) (*CancelResult, error) {
	tx, err := s.sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err // ErrBookingNotFound surfaces to the caller
	}
	moved, err := s.bookings.ReleaseTransitionTx(ctx, tx, bookingID, newStatus)
	if err != nil {
		return nil, err
	}
	if !moved {
		// already in a terminal status; nothing to release
		return &CancelResult{
			Status:    StatusAlreadyCancelled,
			BookingID: bookingID,
			SessionID: b.SessionID,
		}, nil
	}
	if err := s.sessions.ReleaseSeatsTx(ctx, tx, b.SessionID, b.Seats); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	ev := queue.BookingRecordedEvent{
		Outcome:   queue.OutcomeCancelled,
		BookingID: bookingID,
		ClientID:  b.ClientID,
		SessionID: b.SessionID,
		Seats:     b.Seats,
	}
	if avail, aerr := s.sessions.Availability(ctx, b.SessionID); aerr == nil {
		ev.Date = avail.Date
		ev.StartTime = avail.StartTime
		ev.Kind = string(avail.Kind)
	}
	s.record(ctx, ev)

	return &CancelResult{
		Status:        StatusCancelled,
		BookingID:     bookingID,
		SessionID:     b.SessionID,
		ReleasedSeats: b.Seats,
	}, nil
}

// Confirm moves a booking from booked to confirmed.  Seats are
// unchanged; confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, bookingID uint64) error {
	ok, err := s.bookings.Confirm(ctx, bookingID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmable
	}
	return nil
}

// PatternInput is one raw weekly pattern as the chat flows supply it.
type PatternInput struct {
	Weekday string `json:"weekday"`
	Time    string `json:"time"`
}

// OccurrenceResult reports the independent outcome of one expanded
// occurrence of a recurring booking.
type OccurrenceResult struct {
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	Status     string `json:"status"`
	BookingID  uint64 `json:"booking_id,omitempty"`
	WaitlistID uint64 `json:"waitlist_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// RecurringBook expands the weekly patterns over the given number of
// weeks and books each occurrence on its own.  A full or rejected
// occurrence never aborts the batch: outcomes are independent and
// reported per occurrence.  Only a storage failure stops the loop, in
// which case the results collected so far are returned alongside the
// error.
func (s *Service) RecurringBook(ctx context.Context, clientID uint64, patterns []PatternInput, weeks int, kind model.Kind, seats int, startFrom string) ([]OccurrenceResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown session kind: %q", kind)
	}
	parsed := make([]schedule.Pattern, 0, len(patterns))
	for _, p := range patterns {
		wd, err := schedule.ParseWeekday(p.Weekday)
		if err != nil {
			return nil, err
		}
		tm, err := schedule.ParseTime(p.Time)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, schedule.Pattern{Weekday: wd, StartTime: tm})
	}

	start := time.Now().UTC()
	if startFrom != "" {
		var err error
		start, err = time.Parse("2006-01-02", startFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid start_from date: %w", err)
		}
	}
	if seats <= 0 {
		seats = model.DefaultSeats(kind)
	}

	results := make([]OccurrenceResult, 0, len(parsed)*weeks)
	for _, occ := range schedule.ExpandMulti(parsed, start, weeks) {
		sessionID, err := s.sessions.Ensure(ctx, occ.Date, occ.StartTime, kind, 0, nil)
		if err != nil {
			return results, err
		}
		res, err := s.BookSession(ctx, clientID, sessionID, seats)
		if err != nil {
			if errors.Is(err, repository.ErrCapacityExceeded) {
				results = append(results, OccurrenceResult{
					Date:      occ.Date,
					StartTime: occ.StartTime,
					Status:    StatusRejected,
					Reason:    "seats_exceed_capacity",
				})
				continue
			}
			return results, err
		}
		results = append(results, OccurrenceResult{
			Date:       occ.Date,
			StartTime:  occ.StartTime,
			Status:     res.Status,
			BookingID:  res.BookingID,
			WaitlistID: res.WaitlistID,
			Reason:     res.Reason,
		})
	}
	return results, nil
}

func (s *Service) record(ctx context.Context, ev queue.BookingRecordedEvent) {
	if s.publish == nil {
		return
	}
	ev.RecordedAt = time.Now().UTC().Format(time.RFC3339)
	// best effort; the outcome is already committed
	_ = s.publish(ctx, ev)
}
