package imports

import (
	"strings"

	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/timefmt"
)

// parsePreferredTimeslots reads the delimited preference mini-language
// embedded in a teacher row: DAY/START-END segments joined by "|", e.g.
// "MONDAY/08:00-12:00|WEDNESDAY/10:00-11:30". Malformed segments are skipped
// with a segment-scoped issue; the remaining segments still parse. Windows
// keep encounter order and are not deduplicated.
func parsePreferredTimeslots(raw timefmt.Value, row int) ([]models.TeacherTimeslot, []Issue) {
	text := strings.TrimSpace(raw.String())
	if text == "" {
		return nil, nil
	}

	var (
		windows []models.TeacherTimeslot
		issues  []Issue
	)

	for segIdx, segment := range strings.Split(text, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		segNo := segIdx + 1

		parts := strings.Split(segment, "/")
		if len(parts) != 2 {
			issues = append(issues, segmentIssue(SectionTeachers, row, segNo,
				"invalid format %q, expected DAY/START_TIME-END_TIME", segment))
			continue
		}

		day := models.DayOfWeek(strings.ToUpper(strings.TrimSpace(parts[0])))
		timeRange := strings.Split(parts[1], "-")
		if len(timeRange) != 2 {
			issues = append(issues, segmentIssue(SectionTeachers, row, segNo,
				"invalid time range %q, expected START_TIME-END_TIME", parts[1]))
			continue
		}

		if !day.Valid() {
			issues = append(issues, segmentIssue(SectionTeachers, row, segNo, "invalid day %q", string(day)))
			continue
		}

		start := timefmt.Normalize(timefmt.TextValue(timeRange[0]))
		end := timefmt.Normalize(timefmt.TextValue(timeRange[1]))
		if !timefmt.IsValid(start) || !timefmt.IsValid(end) {
			issues = append(issues, segmentIssue(SectionTeachers, row, segNo,
				"invalid time format in %q, use HH:MM (e.g. 08:00, 14:30)", parts[1]))
			continue
		}

		windows = append(windows, models.TeacherTimeslot{
			DayOfWeek: day,
			StartTime: start,
			EndTime:   end,
		})
	}

	return windows, issues
}
