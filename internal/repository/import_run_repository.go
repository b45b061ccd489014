package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/patrickmb/timetable-import-api/internal/models"
)

// ImportRunRepository records an audit trail of import runs.
type ImportRunRepository struct {
	db *sqlx.DB
}

// NewImportRunRepository constructs an ImportRunRepository.
func NewImportRunRepository(db *sqlx.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

// Record inserts one finished run.
func (r *ImportRunRepository) Record(ctx context.Context, run *models.ImportRun) error {
	query := `INSERT INTO import_runs (id, source, valid, error_count, warning_count, lesson_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, query,
		run.ID, run.Source, run.Valid, run.ErrorCount, run.WarningCount, run.LessonCount, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("record import run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *ImportRunRepository) List(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT id, source, valid, error_count, warning_count, lesson_count, created_at
		FROM import_runs ORDER BY created_at DESC LIMIT %d`, limit)

	var runs []models.ImportRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	return runs, nil
}
