package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmb/timetable-import-api/internal/models"
)

func newImportRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestImportRunRepositoryRecord(t *testing.T) {
	db, mock, cleanup := newImportRunRepoMock(t)
	defer cleanup()

	repo := NewImportRunRepository(db)
	mock.ExpectExec("INSERT INTO import_runs").
		WithArgs("run-1", "xlsx", true, 0, 2, 14, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.ImportRun{
		ID:           "run-1",
		Source:       "xlsx",
		Valid:        true,
		WarningCount: 2,
		LessonCount:  14,
	}
	require.NoError(t, repo.Record(context.Background(), run))
	assert.False(t, run.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRunRepositoryList(t *testing.T) {
	db, mock, cleanup := newImportRunRepoMock(t)
	defer cleanup()

	repo := NewImportRunRepository(db)
	rows := sqlmock.NewRows([]string{"id", "source", "valid", "error_count", "warning_count", "lesson_count", "created_at"}).
		AddRow("run-2", "json", false, 3, 0, 0, time.Now()).
		AddRow("run-1", "xlsx", true, 0, 2, 14, time.Now().Add(-time.Hour))
	mock.ExpectQuery("SELECT id, source, valid").WillReturnRows(rows)

	runs, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}
