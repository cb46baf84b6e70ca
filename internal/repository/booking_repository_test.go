package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayanda-dev/studio-booking/internal/model"
)

func newBookingMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestCreateTxPopulatesID(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(3, 2, "booked", 1).
		WillReturnResult(sqlmock.NewResult(11, 1))

	tx, err := repo.db.Begin()
	require.NoError(t, err)
	b := &model.Booking{SessionID: 3, ClientID: 2, Status: model.BookingBooked, Seats: 1}
	require.NoError(t, repo.CreateTx(context.Background(), tx, b))
	assert.Equal(t, uint64(11), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnknownBooking(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "client_id", "status", "seats", "created_at"}))

	_, err := repo.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseTransitionGuard(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs("cancelled", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs("cancelled", 11).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.db.Begin()
	require.NoError(t, err)
	moved, err := repo.ReleaseTransitionTx(context.Background(), tx, 11, model.BookingCancelled)
	require.NoError(t, err)
	assert.True(t, moved)

	// second transition matches nothing
	tx2, err := repo.db.Begin()
	require.NoError(t, err)
	moved, err = repo.ReleaseTransitionTx(context.Background(), tx2, 11, model.BookingCancelled)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmAlreadyConfirmedIsNoop(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "client_id", "status", "seats", "created_at"}).
			AddRow(11, 3, 2, "confirmed", 1, time.Now()))

	ok, err := repo.Confirm(context.Background(), 11)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmTerminalBooking(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "client_id", "status", "seats", "created_at"}).
			AddRow(11, 3, 2, "cancelled", 1, time.Now()))

	ok, err := repo.Confirm(context.Background(), 11)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextUpcomingByWaNone(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectQuery("SELECT b.id, b.session_id").
		WithArgs("27843131635").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "client_id", "name", "wa_number",
			"date", "start_time", "kind", "seats", "status",
		}))

	_, err := repo.NextUpcomingByWa(context.Background(), "27843131635")
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
