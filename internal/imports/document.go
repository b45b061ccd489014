package imports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/timefmt"
)

// document is the loose top-level shape of a JSON import. Entries stay raw so
// one malformed element yields an index-scoped issue instead of failing the
// whole decode.
type document struct {
	Timeslots               []json.RawMessage `json:"timeslots"`
	Rooms                   []json.RawMessage `json:"rooms"`
	Lessons                 []json.RawMessage `json:"lessons"`
	Duration                *json.Number      `json:"duration"`
	ConstraintConfiguration map[string]string `json:"timetableConstraintConfiguration"`
}

type docLesson struct {
	ID           int64               `json:"id"`
	Subject      string              `json:"subject"`
	Teacher      models.Teacher      `json:"teacher"`
	StudentGroup models.StudentGroup `json:"studentGroup"`
	LessonType   models.LessonType   `json:"lessonType"`
	Year         models.Year         `json:"year"`
	Duration     int64               `json:"duration"`
	Pinned       json.RawMessage     `json:"pinned"`
	Timeslot     json.RawMessage     `json:"timeslot"`
	Room         json.RawMessage     `json:"room"`
}

// Document validates a JSON payload whose top-level shape mirrors the
// Timetable aggregate and assembles it when clean. Unlike the tabular path,
// lessons arrive with their teacher and student group already embedded, so no
// foreign-key reconciliation happens here.
func (p *Processor) Document(data []byte) (result Result) {
	defer p.recoverInto(&result)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return invalidResult(Issue{Row: RowNone, Message: fmt.Sprintf("invalid JSON format: %v", err)})
	}

	var errs []Issue

	timeslots := make([]models.Timeslot, 0, len(doc.Timeslots))
	for idx, raw := range doc.Timeslots {
		var ts models.Timeslot
		if err := json.Unmarshal(raw, &ts); err != nil {
			errs = append(errs, rowIssue("timeslots", idx, "invalid timeslot at index %d", idx))
			continue
		}
		ts.StartTime = timefmt.Normalize(timefmt.TextValue(ts.StartTime))
		ts.EndTime = timefmt.Normalize(timefmt.TextValue(ts.EndTime))
		if !ts.DayOfWeek.Valid() || !timefmt.IsValid(ts.StartTime) || !timefmt.IsValid(ts.EndTime) {
			errs = append(errs, rowIssue("timeslots", idx, "invalid timeslot at index %d", idx))
			continue
		}
		timeslots = append(timeslots, ts)
	}

	rooms := make([]models.Room, 0, len(doc.Rooms))
	for idx, raw := range doc.Rooms {
		var room models.Room
		if err := json.Unmarshal(raw, &room); err != nil || room.Name == "" || room.Capacity <= 0 {
			errs = append(errs, rowIssue("rooms", idx, "invalid room at index %d", idx))
			continue
		}
		rooms = append(rooms, room)
	}

	lessons := make([]models.Lesson, 0, len(doc.Lessons))
	for idx, raw := range doc.Lessons {
		lesson, ok := decodeLesson(raw)
		if !ok {
			errs = append(errs, rowIssue("lessons", idx, "invalid lesson at index %d", idx))
			continue
		}
		lessons = append(lessons, lesson)
	}

	duration := int64(models.DefaultSolvingDuration)
	if doc.Duration != nil {
		d, err := doc.Duration.Int64()
		if err != nil || d <= 0 {
			errs = append(errs, sectionIssue("duration", "duration must be a positive number"))
		} else {
			duration = d
		}
	}

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	constraints := doc.ConstraintConfiguration
	if constraints == nil {
		constraints = map[string]string{}
	}

	return Result{
		Valid: true,
		Data: &models.Timetable{
			Timeslots:               timeslots,
			Rooms:                   rooms,
			Lessons:                 lessons,
			Duration:                duration,
			ConstraintConfiguration: constraints,
			Score:                   nil,
			SolverStatus:            nil,
		},
	}
}

func decodeLesson(raw json.RawMessage) (models.Lesson, bool) {
	var dl docLesson
	if err := json.Unmarshal(raw, &dl); err != nil {
		return models.Lesson{}, false
	}
	if dl.Subject == "" || dl.Teacher.Name == "" || dl.StudentGroup.Name == "" {
		return models.Lesson{}, false
	}
	if !dl.StudentGroup.Year.Valid() || !dl.LessonType.Valid() || !dl.Year.Valid() {
		return models.Lesson{}, false
	}
	if dl.StudentGroup.NumberOfStudents <= 0 || dl.Duration <= 0 {
		return models.Lesson{}, false
	}

	return models.Lesson{
		ID:           dl.ID,
		Subject:      dl.Subject,
		Teacher:      dl.Teacher,
		StudentGroup: dl.StudentGroup,
		LessonType:   dl.LessonType,
		Year:         dl.Year,
		Duration:     dl.Duration,
		Pinned:       truthy(dl.Pinned),
		Timeslot:     refID(dl.Timeslot),
		Room:         refID(dl.Room),
	}, true
}

// truthy accepts the literal boolean true or the case-insensitive string
// "true"; anything else, including absence, is false.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	if string(raw) == "true" {
		return true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(s, "true")
	}
	return false
}

// refID reads a nullable timeslot/room reference that may be either a bare
// id or an embedded object carrying one.
func refID(raw json.RawMessage) *int64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil {
		return &id
	}
	var obj struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return nil
}
