package imports

import (
	"strings"

	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/timefmt"
)

// Section names of a timetable workbook.
const (
	SectionTimeslots     = "Timeslots"
	SectionRooms         = "Rooms"
	SectionTeachers      = "Teachers"
	SectionStudentGroups = "StudentGroups"
	SectionLessons       = "Lessons"
	SectionConfiguration = "Configuration"
)

// source yields the raw records of one named section, reporting whether the
// section exists at all.
type source interface {
	section(name string) ([]Record, bool)
}

func extractTimeslots(src source) ([]models.Timeslot, []Issue) {
	rows, ok := src.section(SectionTimeslots)
	if !ok {
		return nil, []Issue{sectionIssue(SectionTimeslots, "missing required sheet: %s", SectionTimeslots)}
	}

	var issues []Issue
	timeslots := make([]models.Timeslot, 0, len(rows))
	for idx, row := range rows {
		if !row.Has("id") || !row.Has("dayOfWeek") || !row.Has("startTime") || !row.Has("endTime") {
			issues = append(issues, rowIssue(SectionTimeslots, idx,
				"missing required fields (id: %s, dayOfWeek: %s, startTime: %s, endTime: %s)",
				row.String("id"), row.String("dayOfWeek"), row.String("startTime"), row.String("endTime")))
			continue
		}

		id, ok := row.Int("id")
		if !ok {
			issues = append(issues, rowIssue(SectionTimeslots, idx, "invalid numeric value for id: %s", row.String("id")))
			continue
		}

		day := models.DayOfWeek(strings.ToUpper(row.String("dayOfWeek")))
		if !day.Valid() {
			issues = append(issues, rowIssue(SectionTimeslots, idx, "invalid dayOfWeek value: %s", row.String("dayOfWeek")))
			continue
		}

		start := row.Time("startTime")
		end := row.Time("endTime")
		if !timefmt.IsValid(start) {
			issues = append(issues, rowIssue(SectionTimeslots, idx, "invalid time format: %s", row.String("startTime")))
			continue
		}
		if !timefmt.IsValid(end) {
			issues = append(issues, rowIssue(SectionTimeslots, idx, "invalid time format: %s", row.String("endTime")))
			continue
		}

		timeslots = append(timeslots, models.Timeslot{
			ID:        id,
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
		})
	}

	return timeslots, issues
}

func extractRooms(src source) ([]models.Room, []Issue) {
	rows, ok := src.section(SectionRooms)
	if !ok {
		return nil, []Issue{sectionIssue(SectionRooms, "missing required sheet: %s", SectionRooms)}
	}

	var issues []Issue
	rooms := make([]models.Room, 0, len(rows))
	for idx, row := range rows {
		if !row.Has("id") || !row.Has("name") || !row.Has("capacity") {
			issues = append(issues, rowIssue(SectionRooms, idx,
				"missing required fields (id: %s, name: %s, capacity: %s)",
				row.String("id"), row.String("name"), row.String("capacity")))
			continue
		}

		id, ok := row.Int("id")
		if !ok {
			issues = append(issues, rowIssue(SectionRooms, idx, "invalid numeric value for id: %s", row.String("id")))
			continue
		}

		capacity, ok := row.Int("capacity")
		if !ok || capacity <= 0 {
			issues = append(issues, rowIssue(SectionRooms, idx, "capacity must be a positive integer: %s", row.String("capacity")))
			continue
		}

		rooms = append(rooms, models.Room{
			ID:       id,
			Name:     row.String("name"),
			Capacity: capacity,
			Building: row.String("building"),
		})
	}

	return rooms, issues
}

func extractTeachers(src source) ([]models.Teacher, []Issue) {
	rows, ok := src.section(SectionTeachers)
	if !ok {
		return nil, []Issue{sectionIssue(SectionTeachers, "missing required sheet: %s", SectionTeachers)}
	}

	var issues []Issue
	teachers := make([]models.Teacher, 0, len(rows))
	for idx, row := range rows {
		if !row.Has("id") || !row.Has("name") {
			issues = append(issues, rowIssue(SectionTeachers, idx,
				"missing required fields (id: %s, name: %s)", row.String("id"), row.String("name")))
			continue
		}

		id, ok := row.Int("id")
		if !ok {
			issues = append(issues, rowIssue(SectionTeachers, idx, "invalid numeric value for id: %s", row.String("id")))
			continue
		}

		preferred, prefIssues := parsePreferredTimeslots(row.Raw("preferredTimeslots"), idx)
		issues = append(issues, prefIssues...)

		teachers = append(teachers, models.Teacher{
			ID:                 id,
			Name:               row.String("name"),
			PreferredTimeslots: preferred,
		})
	}

	return teachers, issues
}

func extractStudentGroups(src source) ([]models.StudentGroup, []Issue) {
	rows, ok := src.section(SectionStudentGroups)
	if !ok {
		return nil, []Issue{sectionIssue(SectionStudentGroups, "missing required sheet: %s", SectionStudentGroups)}
	}

	var issues []Issue
	groups := make([]models.StudentGroup, 0, len(rows))
	for idx, row := range rows {
		if !row.Has("id") || !row.Has("name") || !row.Has("year") || !row.Has("numberOfStudents") {
			issues = append(issues, rowIssue(SectionStudentGroups, idx,
				"missing required fields (id: %s, name: %s, year: %s, numberOfStudents: %s)",
				row.String("id"), row.String("name"), row.String("year"), row.String("numberOfStudents")))
			continue
		}

		id, ok := row.Int("id")
		if !ok {
			issues = append(issues, rowIssue(SectionStudentGroups, idx, "invalid numeric value for id: %s", row.String("id")))
			continue
		}

		year := models.Year(strings.ToUpper(row.String("year")))
		if !year.Valid() {
			issues = append(issues, rowIssue(SectionStudentGroups, idx, "invalid year value: %s", row.String("year")))
			continue
		}

		var semiGroup models.SemiGroup
		if row.Has("semiGroup") {
			semiGroup = models.SemiGroup(strings.ToUpper(row.String("semiGroup")))
			if !semiGroup.Valid() {
				issues = append(issues, rowIssue(SectionStudentGroups, idx, "invalid semiGroup value: %s", row.String("semiGroup")))
				continue
			}
		}

		students, ok := row.Int("numberOfStudents")
		if !ok || students <= 0 {
			issues = append(issues, rowIssue(SectionStudentGroups, idx,
				"numberOfStudents must be a positive integer: %s", row.String("numberOfStudents")))
			continue
		}

		groups = append(groups, models.StudentGroup{
			ID:               id,
			Year:             year,
			Name:             row.String("name"),
			StudentGroup:     row.String("studentGroup"),
			SemiGroup:        semiGroup,
			NumberOfStudents: students,
		})
	}

	return groups, issues
}
