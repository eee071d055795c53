package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

var boardCols = []string{"id", "model_id", "board_number", "year", "seats_amount", "is_deleted", "created_at", "updated_at"}

func TestBoardLockTx(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBoardRepo(db)
	tx := beginTx(t, db, mock)
	now := time.Now()

	mock.ExpectQuery(`FROM boards WHERE id = \? AND is_deleted = 0 FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(boardCols).AddRow(7, nil, "JA01OS", 2019, 180, false, now, now))

	b, err := repo.LockTx(ctx(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, "JA01OS", b.BoardNumber)
	assert.Nil(t, b.ModelID)
}

func TestBoardLockTx_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBoardRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows(boardCols))

	_, err := repo.LockTx(ctx(), tx, 7)
	assert.ErrorIs(t, err, ErrBoardNotFound)
}

func TestBoardCreate_DuplicateNumber(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBoardRepo(db)

	mock.ExpectExec(`INSERT INTO boards`).WillReturnError(&mysql.MySQLError{Number: 1062})

	err := repo.Create(ctx(), &model.Board{BoardNumber: "JA01OS", Year: 2019})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBoardSoftDelete_UpcomingFlights(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBoardRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM flights`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	assert.ErrorIs(t, repo.SoftDelete(ctx(), 7), ErrConflict)
}

func TestManufacturerUpdate_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewManufacturerRepo(db)

	mock.ExpectExec(`UPDATE manufacturers`).WithArgs("Airbus", uint64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(ctx(), &model.Manufacturer{ID: 3, Name: "Airbus"})
	assert.ErrorIs(t, err, ErrManufacturerNotFound)
}

func TestAircraftModelList_FilterByManufacturer(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAircraftModelRepo(db)
	now := time.Now()

	mock.ExpectQuery(`AND am.manufacturer_id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "manufacturer_id", "name", "is_deleted", "created_at", "updated_at", "mname"}).
			AddRow(1, 3, "A320neo", false, now, now, "Airbus"))

	list, err := repo.List(ctx(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Airbus", list[0].ManufacturerName)
	assert.Equal(t, uint64(3), *list[0].ManufacturerID)
}
