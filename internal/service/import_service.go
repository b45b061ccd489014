package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickmb/timetable-import-api/internal/imports"
	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/store"
	appErrors "github.com/patrickmb/timetable-import-api/pkg/errors"
	"github.com/patrickmb/timetable-import-api/pkg/export"
)

type importStore interface {
	Put(ctx context.Context, data *models.Timetable, source string) error
	Get(ctx context.Context) (*store.StoredImport, error)
	Clear(ctx context.Context) error
}

// RunRecorder persists the audit trail of import attempts. Nil disables the
// trail.
type RunRecorder interface {
	Record(ctx context.Context, run *models.ImportRun) error
	List(ctx context.Context, limit int) ([]models.ImportRun, error)
}

// UploadArchive keeps raw upload payloads for later inspection. Nil disables
// archiving.
type UploadArchive interface {
	Save(runID, format string, data []byte) (string, error)
}

type importMetrics interface {
	ObserveImport(format string, valid bool, errors, warnings, lessons int)
}

// ImportSummary gives the caller a quick shape of what was imported.
type ImportSummary struct {
	Timeslots int `json:"timeslots"`
	Rooms     int `json:"rooms"`
	Lessons   int `json:"lessons"`
}

// ImportReport is the user-facing outcome of one import attempt. Issue lists
// are already rendered for humans; the caller decides how many to surface.
type ImportReport struct {
	Valid    bool           `json:"isValid"`
	Errors   []string       `json:"errors"`
	Warnings []string       `json:"warnings"`
	Summary  *ImportSummary `json:"summary,omitempty"`
}

// ImportService glues the pipeline to the store, the audit trail and the
// metrics. Runs are sequential per session; a newer import simply overwrites
// the stored slot.
type ImportService struct {
	processor *imports.Processor
	store     importStore
	runs      RunRecorder
	archive   UploadArchive
	metrics   importMetrics
	logger    *zap.Logger
}

// NewImportService wires the import pipeline dependencies. The run recorder,
// upload archive and metrics sink may be nil when their subsystems are
// disabled.
func NewImportService(processor *imports.Processor, st importStore, runs RunRecorder, archive UploadArchive, metrics importMetrics, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{processor: processor, store: st, runs: runs, archive: archive, metrics: metrics, logger: logger}
}

// Import runs the pipeline over an uploaded payload. A result full of
// validation problems is still a successful call: the report carries them and
// Valid is false. Only infrastructure failures surface as errors.
func (s *ImportService) Import(ctx context.Context, format imports.Format, data []byte) (*ImportReport, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrBadFormat, "unsupported import format: "+string(format))
	}

	result := s.processor.Process(format, data)

	report := &ImportReport{
		Valid:    result.Valid,
		Errors:   imports.Humanize(result.Errors, format),
		Warnings: imports.Humanize(result.Warnings, format),
	}

	lessons := 0
	if result.Valid {
		report.Summary = &ImportSummary{
			Timeslots: len(result.Data.Timeslots),
			Rooms:     len(result.Data.Rooms),
			Lessons:   len(result.Data.Lessons),
		}
		lessons = len(result.Data.Lessons)

		if err := s.store.Put(ctx, result.Data, string(format)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store import")
		}
	}

	runID := uuid.NewString()
	s.recordRun(ctx, runID, format, result, lessons)
	if s.archive != nil {
		if _, err := s.archive.Save(runID, string(format), data); err != nil {
			s.logger.Warn("failed to archive upload", zap.String("run_id", runID), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveImport(string(format), result.Valid, len(result.Errors), len(result.Warnings), lessons)
	}

	s.logger.Info("import processed",
		zap.String("format", string(format)),
		zap.Bool("valid", result.Valid),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)),
	)

	return report, nil
}

// recordRun appends to the audit trail; a failure there never fails the
// import itself.
func (s *ImportService) recordRun(ctx context.Context, runID string, format imports.Format, result imports.Result, lessons int) {
	if s.runs == nil {
		return
	}

	run := &models.ImportRun{
		ID:           runID,
		Source:       string(format),
		Valid:        result.Valid,
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
		LessonCount:  lessons,
	}
	if err := s.runs.Record(ctx, run); err != nil {
		s.logger.Warn("failed to record import run", zap.Error(err))
	}
}

// Current returns the stored import or ErrNoImport when the slot is empty.
func (s *ImportService) Current(ctx context.Context) (*store.StoredImport, error) {
	entry, err := s.store.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read import store")
	}
	if entry == nil {
		return nil, appErrors.ErrNoImport
	}
	return entry, nil
}

// Clear empties the import slot.
func (s *ImportService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear import store")
	}
	return nil
}

// Runs lists the recent audit-trail entries.
func (s *ImportService) Runs(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if s.runs == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import history is disabled")
	}
	return s.runs.List(ctx, limit)
}

// ExportCSV renders the stored import's lessons as a CSV download.
func (s *ImportService) ExportCSV(ctx context.Context) ([]byte, error) {
	entry, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	data, err := export.CSV(lessonTable(entry.Data))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return data, nil
}

func lessonTable(t *models.Timetable) export.Table {
	table := export.Table{
		Headers: []string{"id", "subject", "teacher", "studentGroup", "lessonType", "year", "duration", "pinned", "timeslotId", "roomId"},
	}
	for _, lesson := range t.Lessons {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(lesson.ID, 10),
			lesson.Subject,
			lesson.Teacher.Name,
			lesson.StudentGroup.Name,
			string(lesson.LessonType),
			string(lesson.Year),
			strconv.FormatInt(lesson.Duration, 10),
			strconv.FormatBool(lesson.Pinned),
			formatRef(lesson.Timeslot),
			formatRef(lesson.Room),
		})
	}
	return table
}

func formatRef(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
