package imports

import "fmt"

// headerOffset converts a zero-based data-row index into the row number a
// spreadsheet user sees: 1-based plus the header row.
const headerOffset = 2

// Humanize renders issues for display. Row offsets are purely a presentation
// concern: workbook issues get the spreadsheet row number, document issues
// already carry self-contained index-based messages.
func Humanize(issues []Issue, format Format) []string {
	if len(issues) == 0 {
		return nil
	}

	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		if format != FormatWorkbook || issue.Row < 0 {
			out = append(out, issue.Message)
			continue
		}
		if issue.Segment > 0 {
			out = append(out, fmt.Sprintf("%s sheet row %d, timeslot %d: %s",
				issue.Section, issue.Row+headerOffset, issue.Segment, issue.Message))
			continue
		}
		out = append(out, fmt.Sprintf("%s sheet row %d: %s", issue.Section, issue.Row+headerOffset, issue.Message))
	}
	return out
}
