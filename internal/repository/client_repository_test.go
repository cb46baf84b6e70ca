package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWa(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+27 84 313-1635", "27843131635"},
		{"27843131635", "27843131635"},
		{"(27) 84 313 16 35", "27843131635"},
		{"wa:27840000021", "27840000021"},
		{"", ""},
		{"abc", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeWa(c.in), c.in)
	}
}

func TestUpsertByWaNormalizesNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewClientRepo(db)

	mock.ExpectExec("INSERT INTO clients").
		WithArgs("27843131635", "Jane M").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.UpsertByWa(context.Background(), "+27 84 313-1635", " Jane M ")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertByWaRejectsEmptyNumber(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewClientRepo(db)

	_, err = repo.UpsertByWa(context.Background(), "+-()", "Jane")
	assert.Error(t, err)
}

func TestExistsByWa(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewClientRepo(db)

	mock.ExpectQuery("SELECT 1 FROM clients").
		WithArgs("27843131635").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM clients").
		WithArgs("27840000099").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := repo.ExistsByWa(context.Background(), "+27 84 313 1635")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByWa(context.Background(), "27840000099")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
