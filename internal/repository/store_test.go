package repository_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/position"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormStore_GetBoard_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = .* LIMIT`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	board, err := store.GetBoard(context.Background(), uuid.New())

	// Assert
	assert.Nil(t, board)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListsByBoard_OrdersByPosition(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)

	boardID := uuid.New()
	first, second := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "lists" WHERE board_id = .* AND archived = .* ORDER BY position,created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position", "archived"}).
			AddRow(first.String(), boardID.String(), "Todo", 0, false).
			AddRow(second.String(), boardID.String(), "Done", 1, false))

	// Act
	lists, err := store.ListsByBoard(context.Background(), boardID, false)

	// Assert
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, first, lists[0].ID)
	assert.Equal(t, 1, lists[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTx_LockAndRenumberCommit(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)

	listID := uuid.New()
	cardA, cardB := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "lists" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(listID.String()))
	mock.ExpectExec(`UPDATE "cards" SET "position"=.*WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "cards" SET "position"=.*WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.LockLists(context.Background(), listID, listID))
	err = tx.SetCardPositions(context.Background(), []position.Assignment{
		{ID: cardA, Position: 1},
		{ID: cardB, Position: 0},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Assert
	assert.NoError(t, tx.Rollback(), "rollback after commit is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTx_DeadlockIsTransient(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "boards" WHERE id = .* FOR UPDATE`).
		WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	mock.ExpectRollback()

	// Act
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	lockErr := tx.LockBoard(context.Background(), uuid.New())
	require.NoError(t, tx.Rollback())

	// Assert
	assert.True(t, errors.Is(lockErr, apperr.ErrTransientStore))
	assert.Equal(t, "transient_store", apperr.Kind(lockErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTx_CreateActivity(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)

	activity := &model.Activity{
		BoardID:     uuid.New(),
		Kind:        model.ActivityMove,
		Description: `alice reordered lists`,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	// Act
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	err = tx.CreateActivity(context.Background(), activity)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// Assert
	assert.NotEqual(t, uuid.Nil, activity.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_IsBoardMember(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards" WHERE id = .* AND \(owner_id = .* OR id IN \(SELECT board_id FROM "board_members" WHERE user_id = .*\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	// Act
	ok, err := store.IsBoardMember(context.Background(), uuid.New(), uuid.New())

	// Assert
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTx_UpdateListLeavesArchivedAndPosition(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormStore(gormDB)
	list := &model.List{ID: uuid.New(), Title: "Renamed", Position: 3, Archived: false}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "lists" SET "title"=\$1,"updated_at"=\$2 WHERE "id" = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "lists" SET "archived"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.UpdateList(context.Background(), list))
	require.NoError(t, tx.ArchiveList(context.Background(), list.ID))
	require.NoError(t, tx.Commit())

	// Assert
	assert.NoError(t, mock.ExpectationsWereMet())
}
