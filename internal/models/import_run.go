package models

import "time"

// ImportRun is one audit-trail entry for a finished import attempt.
type ImportRun struct {
	ID           string    `db:"id" json:"id"`
	Source       string    `db:"source" json:"source"`
	Valid        bool      `db:"valid" json:"valid"`
	ErrorCount   int       `db:"error_count" json:"error_count"`
	WarningCount int       `db:"warning_count" json:"warning_count"`
	LessonCount  int       `db:"lesson_count" json:"lesson_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
