package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayanda-dev/studio-booking/internal/model"
)

func newSessionMock(t *testing.T) (*SessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepo(db), mock
}

func TestEnsureReturnsExistingSession(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery("SELECT id FROM sessions").
		WithArgs("2025-09-02", "09:00", "group").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Ensure(context.Background(), "2025-09-02", "09:00", model.KindGroup, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureInsertsOnFirstUse(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery("SELECT id FROM sessions").
		WithArgs("2025-09-02", "09:00", "duo").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("2025-09-02", "09:00", "duo", 2, nil).
		WillReturnResult(sqlmock.NewResult(7, 1))

	// capacity 0 falls back to the duo default of 2
	id, err := repo.Ensure(context.Background(), "2025-09-02", "09:00", model.KindDuo, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureLosesCreateRace(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery("SELECT id FROM sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery("SELECT id FROM sessions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	id, err := repo.Ensure(context.Background(), "2025-09-02", "09:00", model.KindGroup, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityComputesRemaining(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "start_time", "kind", "capacity", "booked_count", "status"}).
			AddRow(3, "2025-09-02", "09:00", "group", 6, 4, "open"))

	a, err := repo.Availability(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 6, a.Capacity)
	assert.Equal(t, 4, a.BookedCount)
	assert.Equal(t, 2, a.Available)
	assert.Equal(t, model.SessionOpen, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityUnknownSession(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectQuery("SELECT id, DATE_FORMAT").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "start_time", "kind", "capacity", "booked_count", "status"}))

	_, err := repo.Availability(context.Background(), 99)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSeatsTxGuardRefuses(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WithArgs(2, 2, 3, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	ok, err := repo.ReserveSeatsTx(context.Background(), tx, 3, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSeatsTxGuardAccepts(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WithArgs(1, 1, 3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	ok, err := repo.ReserveSeatsTx(context.Background(), tx, 3, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseSeatsTx(t *testing.T) {
	repo, mock := newSessionMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sessions").
		WithArgs(2, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseSeatsTx(context.Background(), tx, 3, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
