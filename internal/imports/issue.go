package imports

import (
	"fmt"
	"strings"
)

// RowNone marks an issue that is not scoped to a single row.
const RowNone = -1

// Issue is one validation problem found during an import run. Row indexes are
// zero-based over the data rows of a section; presentation layers add any
// header offset themselves. Segment is the 1-based position inside a
// preferred-timeslot list, zero when not applicable.
type Issue struct {
	Section string `json:"section,omitempty"`
	Row     int    `json:"row"`
	Segment int    `json:"segment,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Section != "" {
		b.WriteString(i.Section)
		if i.Row >= 0 {
			fmt.Fprintf(&b, " row %d", i.Row)
		}
		if i.Segment > 0 {
			fmt.Fprintf(&b, " segment %d", i.Segment)
		}
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

func sectionIssue(section, format string, args ...interface{}) Issue {
	return Issue{Section: section, Row: RowNone, Message: fmt.Sprintf(format, args...)}
}

func rowIssue(section string, row int, format string, args ...interface{}) Issue {
	return Issue{Section: section, Row: row, Message: fmt.Sprintf(format, args...)}
}

func segmentIssue(section string, row, segment int, format string, args ...interface{}) Issue {
	return Issue{Section: section, Row: row, Segment: segment, Message: fmt.Sprintf(format, args...)}
}
