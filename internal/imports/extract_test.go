package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/timefmt"
)

// fakeSource serves records directly, standing in for a parsed workbook.
type fakeSource map[string][]Record

func (f fakeSource) section(name string) ([]Record, bool) {
	rows, ok := f[name]
	return rows, ok
}

func rec(fields map[string]interface{}) Record {
	r := make(Record, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			r[k] = timefmt.TextValue(val)
		case float64:
			r[k] = timefmt.NumberValue(val)
		case int:
			r[k] = timefmt.NumberValue(float64(val))
		}
	}
	return r
}

func TestExtractTimeslots(t *testing.T) {
	src := fakeSource{
		SectionTimeslots: []Record{
			rec(map[string]interface{}{"id": 1, "dayOfWeek": "monday", "startTime": "8:30", "endTime": "10:00"}),
			rec(map[string]interface{}{"id": 2, "dayOfWeek": "TUESDAY", "startTime": 1.0 / 3.0, "endTime": 0.5}),
		},
	}

	timeslots, issues := extractTimeslots(src)
	require.Empty(t, issues)
	require.Len(t, timeslots, 2)
	assert.Equal(t, models.Monday, timeslots[0].DayOfWeek)
	assert.Equal(t, "08:30:00", timeslots[0].StartTime)
	assert.Equal(t, "08:00:00", timeslots[1].StartTime)
	assert.Equal(t, "12:00:00", timeslots[1].EndTime)
}

func TestExtractTimeslotsMissingSheet(t *testing.T) {
	timeslots, issues := extractTimeslots(fakeSource{})
	assert.Empty(t, timeslots)
	require.Len(t, issues, 1)
	assert.Equal(t, RowNone, issues[0].Row)
	assert.Contains(t, issues[0].Message, "missing required sheet")
}

func TestExtractTimeslotsAdditiveErrors(t *testing.T) {
	// Each row misses a different required field; every one must be reported.
	src := fakeSource{
		SectionTimeslots: []Record{
			rec(map[string]interface{}{"dayOfWeek": "MONDAY", "startTime": "08:00", "endTime": "10:00"}),
			rec(map[string]interface{}{"id": 2, "startTime": "08:00", "endTime": "10:00"}),
			rec(map[string]interface{}{"id": 3, "dayOfWeek": "MONDAY", "endTime": "10:00"}),
			rec(map[string]interface{}{"id": 4, "dayOfWeek": "MONDAY", "startTime": "08:00"}),
		},
	}

	timeslots, issues := extractTimeslots(src)
	assert.Empty(t, timeslots)
	require.Len(t, issues, 4)
	for i, issue := range issues {
		assert.Equal(t, i, issue.Row)
		assert.Contains(t, issue.Message, "missing required fields")
	}
}

func TestExtractTimeslotsBadValues(t *testing.T) {
	src := fakeSource{
		SectionTimeslots: []Record{
			rec(map[string]interface{}{"id": "abc", "dayOfWeek": "MONDAY", "startTime": "08:00", "endTime": "10:00"}),
			rec(map[string]interface{}{"id": 2, "dayOfWeek": "FUNDAY", "startTime": "08:00", "endTime": "10:00"}),
			rec(map[string]interface{}{"id": 3, "dayOfWeek": "MONDAY", "startTime": "25:00", "endTime": "10:00"}),
		},
	}

	timeslots, issues := extractTimeslots(src)
	assert.Empty(t, timeslots)
	require.Len(t, issues, 3)
	assert.Contains(t, issues[0].Message, "invalid numeric value for id")
	assert.Contains(t, issues[1].Message, "invalid dayOfWeek")
	assert.Contains(t, issues[2].Message, "invalid time format")
}

func TestExtractRooms(t *testing.T) {
	src := fakeSource{
		SectionRooms: []Record{
			rec(map[string]interface{}{"id": 1, "name": "C2", "capacity": 30, "building": "Central"}),
			rec(map[string]interface{}{"id": 2, "name": "Lab 7", "capacity": 15}),
			rec(map[string]interface{}{"id": 3, "name": "Broken", "capacity": 0}),
		},
	}

	rooms, issues := extractRooms(src)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Central", rooms[0].Building)
	assert.Empty(t, rooms[1].Building)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "positive integer")
}

func TestExtractTeachers(t *testing.T) {
	src := fakeSource{
		SectionTeachers: []Record{
			rec(map[string]interface{}{"id": 1, "name": "  Ada Lovelace  ", "preferredTimeslots": "MONDAY/08:00-12:00"}),
			rec(map[string]interface{}{"id": 2, "name": "Alan Turing"}),
		},
	}

	teachers, issues := extractTeachers(src)
	require.Empty(t, issues)
	require.Len(t, teachers, 2)
	assert.Equal(t, "Ada Lovelace", teachers[0].Name)
	require.Len(t, teachers[0].PreferredTimeslots, 1)
	assert.Empty(t, teachers[1].PreferredTimeslots)
}

func TestParsePreferredTimeslots(t *testing.T) {
	windows, issues := parsePreferredTimeslots(timefmt.TextValue("MONDAY/08:00-12:00|BADDAY/9:00-10:00"), 0)

	require.Len(t, windows, 1)
	assert.Equal(t, models.TeacherTimeslot{DayOfWeek: models.Monday, StartTime: "08:00:00", EndTime: "12:00:00"}, windows[0])

	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Segment)
	assert.Contains(t, issues[0].Message, `invalid day "BADDAY"`)
}

func TestParsePreferredTimeslotsArity(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"missing slash", "MONDAY 08:00-12:00", "invalid format"},
		{"missing dash", "MONDAY/08:00", "invalid time range"},
		{"extra slash", "MONDAY/08:00/12:00", "invalid format"},
		{"bad time", "MONDAY/08:00-26:00", "invalid time format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			windows, issues := parsePreferredTimeslots(timefmt.TextValue(tc.in), 3)
			assert.Empty(t, windows)
			require.Len(t, issues, 1)
			assert.Equal(t, 3, issues[0].Row)
			assert.Contains(t, issues[0].Message, tc.want)
		})
	}
}

func TestParsePreferredTimeslotsBlankSegments(t *testing.T) {
	windows, issues := parsePreferredTimeslots(timefmt.TextValue(" | MONDAY/8:00-9:30 | "), 0)
	require.Empty(t, issues)
	require.Len(t, windows, 1)
	assert.Equal(t, "08:00:00", windows[0].StartTime)
	assert.Equal(t, "09:30:00", windows[0].EndTime)
}

func TestParsePreferredTimeslotsEmpty(t *testing.T) {
	windows, issues := parsePreferredTimeslots(timefmt.Value{}, 0)
	assert.Empty(t, windows)
	assert.Empty(t, issues)
}

func TestExtractStudentGroups(t *testing.T) {
	src := fakeSource{
		SectionStudentGroups: []Record{
			rec(map[string]interface{}{"id": 1, "name": "CS-A", "studentGroup": "A", "semiGroup": "semi_group1", "year": "first", "numberOfStudents": 28}),
			rec(map[string]interface{}{"id": 2, "name": "CS-B", "year": "SECOND", "numberOfStudents": 30}),
		},
	}

	groups, issues := extractStudentGroups(src)
	require.Empty(t, issues)
	require.Len(t, groups, 2)
	assert.Equal(t, models.SemiGroup1, groups[0].SemiGroup)
	assert.Equal(t, models.YearFirst, groups[0].Year)
	// semiGroup and studentGroup are optional.
	assert.Empty(t, groups[1].SemiGroup)
	assert.Empty(t, groups[1].StudentGroup)
}

func TestExtractStudentGroupsInvalidEnums(t *testing.T) {
	src := fakeSource{
		SectionStudentGroups: []Record{
			rec(map[string]interface{}{"id": 1, "name": "CS-A", "year": "SEVENTH", "numberOfStudents": 28}),
			rec(map[string]interface{}{"id": 2, "name": "CS-B", "year": "FIRST", "semiGroup": "SEMI_GROUP9", "numberOfStudents": 30}),
		},
	}

	groups, issues := extractStudentGroups(src)
	assert.Empty(t, groups)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "invalid year")
	assert.Contains(t, issues[1].Message, "invalid semiGroup")
}

func TestExtractConfigurationBuckets(t *testing.T) {
	src := fakeSource{
		SectionConfiguration: []Record{
			rec(map[string]interface{}{"setting": "duration", "value": 120}),
			rec(map[string]interface{}{"setting": "roomConflictUniversity", "value": "0/5/10"}),
			rec(map[string]interface{}{"setting": "labsGroupedInTheSameTimeslot", "value": "1/0/0"}),
			rec(map[string]interface{}{"setting": "gapsAfterLessons", "value": "0/0/1"}),
			rec(map[string]interface{}{"setting": "coursesInTheSameBuilding", "value": "0/1/0"}),
			rec(map[string]interface{}{"setting": "someOtherKnob", "value": "seven"}),
		},
	}

	cfg, errs, warnings := extractConfiguration(src)
	require.Empty(t, errs)
	require.Empty(t, warnings)
	assert.Equal(t, int64(120), cfg.Duration)
	// Weight strings stay opaque; never parsed into numbers.
	assert.Equal(t, "0/5/10", cfg.Constraints["roomConflictUniversity"])
	assert.Equal(t, "1/0/0", cfg.Constraints["labsGroupedInTheSameTimeslot"])
	assert.Equal(t, "0/0/1", cfg.Constraints["gapsAfterLessons"])
	assert.Equal(t, "0/1/0", cfg.Constraints["coursesInTheSameBuilding"])
	assert.Equal(t, "seven", cfg.Misc["someOtherKnob"])
}

func TestExtractConfigurationMissingSection(t *testing.T) {
	cfg, errs, warnings := extractConfiguration(fakeSource{})
	assert.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "optional sheet")
	assert.Equal(t, int64(models.DefaultSolvingDuration), cfg.Duration)
	assert.Empty(t, cfg.Constraints)
}

func TestExtractConfigurationIncompleteRows(t *testing.T) {
	src := fakeSource{
		SectionConfiguration: []Record{
			rec(map[string]interface{}{"setting": "duration"}),
			rec(map[string]interface{}{"value": "0/5/10"}),
		},
	}

	cfg, errs, warnings := extractConfiguration(src)
	assert.Empty(t, errs)
	assert.Len(t, warnings, 2)
	assert.Equal(t, int64(models.DefaultSolvingDuration), cfg.Duration)
}

func TestExtractConfigurationBadDuration(t *testing.T) {
	src := fakeSource{
		SectionConfiguration: []Record{
			rec(map[string]interface{}{"setting": "duration", "value": "soon"}),
		},
	}

	_, errs, _ := extractConfiguration(src)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "positive integer")
}
