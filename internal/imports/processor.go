// Package imports converts externally authored scheduling data (xlsx
// workbooks or JSON documents) into a validated Timetable aggregate. All
// data-shape problems are collected as issues rather than raised as errors:
// one run reports every problem it can find, and the aggregate is only
// assembled when zero hard errors occurred.
package imports

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/patrickmb/timetable-import-api/internal/models"
)

// Format is the caller-declared shape of an uploaded import. It is never
// sniffed from content.
type Format string

const (
	FormatWorkbook Format = "xlsx"
	FormatDocument Format = "json"
)

// Valid reports whether the format is one the processor understands.
func (f Format) Valid() bool {
	return f == FormatWorkbook || f == FormatDocument
}

// Result is the outcome of one import run. Data is set only when Valid is
// true; all errors found in the run are reported together.
type Result struct {
	Valid    bool              `json:"isValid"`
	Errors   []Issue           `json:"errors"`
	Warnings []Issue           `json:"warnings"`
	Data     *models.Timetable `json:"data,omitempty"`
}

// Processor runs the import pipeline. It is stateless and safe for
// sequential reuse; a given session runs at most one import at a time.
type Processor struct {
	log *zap.Logger
}

// NewProcessor constructs a processor.
func NewProcessor(log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{log: log}
}

// Process dispatches on the declared format.
func (p *Processor) Process(format Format, data []byte) Result {
	switch format {
	case FormatWorkbook:
		return p.Workbook(data)
	case FormatDocument:
		return p.Document(data)
	default:
		return invalidResult(Issue{Row: RowNone, Message: fmt.Sprintf("unsupported import format: %s", format)})
	}
}

// Workbook runs the tabular pipeline over an xlsx payload.
func (p *Processor) Workbook(data []byte) (result Result) {
	defer p.recoverInto(&result)

	wb, err := openWorkbook(data)
	if err != nil {
		return invalidResult(Issue{Row: RowNone, Message: fmt.Sprintf("failed to read workbook: %v", err)})
	}
	defer wb.Close()

	return p.run(wb)
}

// run sequences the extractors over any record source, merging their issue
// slices, and assembles the aggregate only when no hard error occurred.
func (p *Processor) run(src source) Result {
	var (
		errs     []Issue
		warnings []Issue
	)

	timeslots, tsIssues := extractTimeslots(src)
	errs = append(errs, tsIssues...)

	rooms, roomIssues := extractRooms(src)
	errs = append(errs, roomIssues...)

	teachers, teacherIssues := extractTeachers(src)
	errs = append(errs, teacherIssues...)

	groups, groupIssues := extractStudentGroups(src)
	errs = append(errs, groupIssues...)

	lessons, lessonErrs, lessonWarnings := extractLessons(src, teachers, groups, timeslots, rooms)
	errs = append(errs, lessonErrs...)
	warnings = append(warnings, lessonWarnings...)

	cfg, cfgErrs, cfgWarnings := extractConfiguration(src)
	errs = append(errs, cfgErrs...)
	warnings = append(warnings, cfgWarnings...)

	p.log.Debug("import pipeline finished",
		zap.Int("timeslots", len(timeslots)),
		zap.Int("rooms", len(rooms)),
		zap.Int("teachers", len(teachers)),
		zap.Int("student_groups", len(groups)),
		zap.Int("lessons", len(lessons)),
		zap.Int("errors", len(errs)),
		zap.Int("warnings", len(warnings)),
	)

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs, Warnings: warnings}
	}

	return Result{
		Valid:    true,
		Warnings: warnings,
		Data: &models.Timetable{
			Timeslots:               timeslots,
			Rooms:                   rooms,
			Lessons:                 lessons,
			Duration:                cfg.Duration,
			ConstraintConfiguration: cfg.Constraints,
			// The import never fabricates a solver result.
			Score:        nil,
			SolverStatus: nil,
		},
	}
}

// recoverInto converts an escaped panic into a single terminal error entry;
// the processor never lets one reach the caller.
func (p *Processor) recoverInto(result *Result) {
	if r := recover(); r != nil {
		p.log.Error("import run panicked", zap.Any("panic", r))
		*result = invalidResult(Issue{Row: RowNone, Message: fmt.Sprintf("unexpected error processing import: %v", r)})
	}
}

func invalidResult(issues ...Issue) Result {
	return Result{Valid: false, Errors: issues}
}
