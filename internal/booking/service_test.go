package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayanda-dev/studio-booking/internal/model"
	"github.com/ayanda-dev/studio-booking/internal/queue"
	"github.com/ayanda-dev/studio-booking/internal/repository"
)

// newTestService wires a Service onto one mocked database, capturing
// published events instead of touching a broker.
func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *[]queue.BookingRecordedEvent) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events := &[]queue.BookingRecordedEvent{}
	publish := func(_ context.Context, ev queue.BookingRecordedEvent) error {
		*events = append(*events, ev)
		return nil
	}
	svc := NewService(
		repository.NewSessionRepo(db),
		repository.NewBookingRepo(db),
		repository.NewWaitlistRepo(db),
		publish,
	)
	return svc, mock, events
}

func availabilityRows(id uint64, capacity, booked int, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "date", "start_time", "kind", "capacity", "booked_count", "status"}).
		AddRow(id, "2025-09-02", "09:00", "group", capacity, booked, status)
}

func TestBookSessionSeatsClient(t *testing.T) {
	svc, mock, events := newTestService(t)

	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(3).
		WillReturnRows(availabilityRows(3, 6, 4, "open"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WithArgs(1, 1, 3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(3, 2, "booked", 1).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	res, err := svc.BookSession(context.Background(), 2, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, res.Status)
	assert.Equal(t, uint64(11), res.BookingID)
	assert.Equal(t, 1, res.AvailableAfter)

	require.Len(t, *events, 1)
	assert.Equal(t, queue.OutcomeBooked, (*events)[0].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSessionFullFallsToWaitlist(t *testing.T) {
	svc, mock, events := newTestService(t)

	// availability looks open but the guarded update matches no row,
	// as happens when a concurrent booking takes the last seat
	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(3).
		WillReturnRows(availabilityRows(3, 6, 5, "open"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WithArgs(2, 2, 3, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectExec("INSERT INTO waitlist").
		WithArgs(3, 2, model.WaitlistFull).
		WillReturnResult(sqlmock.NewResult(9, 1))

	res, err := svc.BookSession(context.Background(), 2, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusWaitlisted, res.Status)
	assert.Equal(t, uint64(9), res.WaitlistID)
	assert.Equal(t, model.WaitlistFull, res.Reason)
	assert.Zero(t, res.BookingID)

	require.Len(t, *events, 1)
	assert.Equal(t, queue.OutcomeWaitlisted, (*events)[0].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSessionClosedWaitlists(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(3).
		WillReturnRows(availabilityRows(3, 6, 0, "cancelled"))
	mock.ExpectExec("INSERT INTO waitlist").
		WithArgs(3, 2, model.WaitlistSessionClosed).
		WillReturnResult(sqlmock.NewResult(4, 1))

	res, err := svc.BookSession(context.Background(), 2, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusWaitlisted, res.Status)
	assert.Equal(t, model.WaitlistSessionClosed, res.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSessionSeatsExceedCapacity(t *testing.T) {
	svc, mock, events := newTestService(t)

	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(3).
		WillReturnRows(availabilityRows(3, 2, 0, "open"))

	_, err := svc.BookSession(context.Background(), 2, 3, 5)
	assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	assert.Empty(t, *events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func bookingRow(status string, seats int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "session_id", "client_id", "status", "seats", "created_at"}).
		AddRow(11, 3, 2, status, seats, time.Now())
}

func TestCancelReleasesSeats(t *testing.T) {
	svc, mock, events := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(11).
		WillReturnRows(bookingRow("booked", 2))
	mock.ExpectExec("UPDATE bookings").
		WithArgs("cancelled", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sessions").
		WithArgs(2, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// post-commit availability read only enriches the event
	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(3).
		WillReturnRows(availabilityRows(3, 6, 3, "open"))

	res, err := svc.Cancel(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, 2, res.ReleasedSeats)

	require.Len(t, *events, 1)
	assert.Equal(t, queue.OutcomeCancelled, (*events)[0].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTwiceIsNoop(t *testing.T) {
	svc, mock, events := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(11).
		WillReturnRows(bookingRow("cancelled", 2))
	mock.ExpectExec("UPDATE bookings").
		WithArgs("cancelled", 11).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	res, err := svc.Cancel(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyCancelled, res.Status)
	assert.Zero(t, res.ReleasedSeats)
	assert.Empty(t, *events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "client_id", "status", "seats", "created_at"}))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAbsentRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.MarkAbsent(context.Background(), 11, "vanished")
	assert.Error(t, err)
}

func TestBookClientRejectsUnknownKind(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.BookClient(context.Background(), 2, "2025-09-02", "09:00", model.Kind("mega"), 1)
	assert.Error(t, err)
}

func TestRecurringBookIndependentOutcomes(t *testing.T) {
	svc, mock, _ := newTestService(t)

	// two Tuesdays from Monday 2025-09-01: the first books, the second
	// is full and waitlists; the batch still reports both
	mock.ExpectQuery("SELECT id FROM sessions").
		WithArgs("2025-09-02", "09:00", "group").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(31).
		WillReturnRows(availabilityRows(31, 6, 0, "open"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT id FROM sessions").
		WithArgs("2025-09-09", "09:00", "group").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(32))
	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(32).
		WillReturnRows(availabilityRows(32, 6, 6, "full"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectExec("INSERT INTO waitlist").
		WillReturnResult(sqlmock.NewResult(8, 1))

	results, err := svc.RecurringBook(context.Background(), 2,
		[]PatternInput{{Weekday: "tue", Time: "9"}}, 2, model.KindGroup, 1, "2025-09-01")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "2025-09-02", results[0].Date)
	assert.Equal(t, StatusBooked, results[0].Status)
	assert.Equal(t, uint64(21), results[0].BookingID)

	assert.Equal(t, "2025-09-09", results[1].Date)
	assert.Equal(t, StatusWaitlisted, results[1].Status)
	assert.Equal(t, uint64(8), results[1].WaitlistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurringBookPropagatesStorageError(t *testing.T) {
	svc, mock, _ := newTestService(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT id FROM sessions").
		WithArgs("2025-09-02", "09:00", "group").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(31).
		WillReturnRows(availabilityRows(31, 6, 0, "open"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT id FROM sessions").
		WithArgs("2025-09-09", "09:00", "group").
		WillReturnError(boom)

	results, err := svc.RecurringBook(context.Background(), 2,
		[]PatternInput{{Weekday: "tue", Time: "9"}}, 2, model.KindGroup, 1, "2025-09-01")
	require.Error(t, err)
	// the first occurrence committed before the failure and is reported
	require.Len(t, results, 1)
	assert.Equal(t, StatusBooked, results[0].Status)
}
