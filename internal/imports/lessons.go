package imports

import (
	"strings"

	"github.com/patrickmb/timetable-import-api/internal/models"
)

// extractLessons reconciles lesson rows against the already-extracted entity
// lists. Dangling teacher or student-group references are hard errors; a
// dangling pinned timeslot or room degrades to a warning and the lesson stays
// unassigned there.
func extractLessons(
	src source,
	teachers []models.Teacher,
	groups []models.StudentGroup,
	timeslots []models.Timeslot,
	rooms []models.Room,
) ([]models.Lesson, []Issue, []Issue) {
	rows, ok := src.section(SectionLessons)
	if !ok {
		return nil, []Issue{sectionIssue(SectionLessons, "missing required sheet: %s", SectionLessons)}, nil
	}

	teacherByID := make(map[int64]models.Teacher, len(teachers))
	for _, t := range teachers {
		teacherByID[t.ID] = t
	}
	groupByID := make(map[int64]models.StudentGroup, len(groups))
	for _, g := range groups {
		groupByID[g.ID] = g
	}
	timeslotIDs := make(map[int64]struct{}, len(timeslots))
	for _, ts := range timeslots {
		timeslotIDs[ts.ID] = struct{}{}
	}
	roomIDs := make(map[int64]struct{}, len(rooms))
	for _, r := range rooms {
		roomIDs[r.ID] = struct{}{}
	}

	var (
		errs     []Issue
		warnings []Issue
	)
	lessons := make([]models.Lesson, 0, len(rows))

	for idx, row := range rows {
		if !row.Has("id") || !row.Has("subject") || !row.Has("teacherId") || !row.Has("studentGroupId") ||
			!row.Has("lessonType") || !row.Has("year") || !row.Has("duration") {
			errs = append(errs, rowIssue(SectionLessons, idx,
				"missing required fields (id: %s, subject: %s, teacherId: %s, studentGroupId: %s, lessonType: %s, year: %s, duration: %s)",
				row.String("id"), row.String("subject"), row.String("teacherId"), row.String("studentGroupId"),
				row.String("lessonType"), row.String("year"), row.String("duration")))
			continue
		}

		id, ok := row.Int("id")
		if !ok {
			errs = append(errs, rowIssue(SectionLessons, idx, "invalid numeric value for id: %s", row.String("id")))
			continue
		}

		teacherID, ok := row.Int("teacherId")
		if !ok {
			errs = append(errs, rowIssue(SectionLessons, idx, "invalid numeric value for teacherId: %s", row.String("teacherId")))
			continue
		}
		teacher, found := teacherByID[teacherID]
		if !found {
			errs = append(errs, rowIssue(SectionLessons, idx, "teacher with id %d not found", teacherID))
			continue
		}

		groupID, ok := row.Int("studentGroupId")
		if !ok {
			errs = append(errs, rowIssue(SectionLessons, idx, "invalid numeric value for studentGroupId: %s", row.String("studentGroupId")))
			continue
		}
		group, found := groupByID[groupID]
		if !found {
			errs = append(errs, rowIssue(SectionLessons, idx, "student group with id %d not found", groupID))
			continue
		}

		lessonType := models.LessonType(strings.ToUpper(row.String("lessonType")))
		if !lessonType.Valid() {
			errs = append(errs, rowIssue(SectionLessons, idx, "invalid lessonType value: %s", row.String("lessonType")))
			continue
		}

		year := models.Year(strings.ToUpper(row.String("year")))
		if !year.Valid() {
			errs = append(errs, rowIssue(SectionLessons, idx, "invalid year value: %s", row.String("year")))
			continue
		}

		duration, ok := row.Int("duration")
		if !ok || duration <= 0 {
			errs = append(errs, rowIssue(SectionLessons, idx, "duration must be a positive integer: %s", row.String("duration")))
			continue
		}

		var timeslotRef *int64
		if row.Has("timeslotId") {
			if tsID, ok := row.Int("timeslotId"); ok {
				if _, found := timeslotIDs[tsID]; found {
					timeslotRef = &tsID
				} else {
					warnings = append(warnings, rowIssue(SectionLessons, idx,
						"timeslot with id %d not found, lesson will be unpinned from timeslot", tsID))
				}
			} else {
				errs = append(errs, rowIssue(SectionLessons, idx, "invalid numeric value for timeslotId: %s", row.String("timeslotId")))
				continue
			}
		}

		var roomRef *int64
		if row.Has("roomId") {
			if roomID, ok := row.Int("roomId"); ok {
				if _, found := roomIDs[roomID]; found {
					roomRef = &roomID
				} else {
					warnings = append(warnings, rowIssue(SectionLessons, idx,
						"room with id %d not found, lesson will be unpinned from room", roomID))
				}
			} else {
				errs = append(errs, rowIssue(SectionLessons, idx, "invalid numeric value for roomId: %s", row.String("roomId")))
				continue
			}
		}

		lessons = append(lessons, models.Lesson{
			ID:           id,
			Subject:      row.String("subject"),
			Teacher:      teacher,
			StudentGroup: group,
			LessonType:   lessonType,
			Year:         year,
			Duration:     duration,
			Pinned:       row.TruthyPinned("pinned"),
			Timeslot:     timeslotRef,
			Room:         roomRef,
		})
	}

	return lessons, errs, warnings
}
