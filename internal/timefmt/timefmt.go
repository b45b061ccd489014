// Package timefmt normalises the heterogeneous time encodings found in
// imported scheduling data into canonical HH:MM:SS wall-clock strings.
// There is no timezone concept; normalised times are compared
// lexicographically by consumers.
package timefmt

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Kind discriminates how a raw cell value was encoded at the source.
type Kind int

const (
	// Text is a time written out as a string, e.g. "8:00" or "14:30:00".
	Text Kind = iota
	// Number is a spreadsheet time cell: a fraction of a day in [0, 1).
	Number
)

// Value is a raw time cell tagged with its source encoding. The tag is
// decided once at the input boundary rather than sniffed here.
type Value struct {
	Kind Kind
	Text string
	Num  float64
}

// TextValue wraps a string cell.
func TextValue(s string) Value { return Value{Kind: Text, Text: s} }

// NumberValue wraps a numeric fraction-of-day cell.
func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }

// String returns the raw value's string coercion.
func (v Value) String() string {
	if v.Kind == Number {
		return fmt.Sprintf("%v", v.Num)
	}
	return v.Text
}

var (
	fullPattern   = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	hourMinute    = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	validityCheck = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)
)

// Normalize converts a tagged raw value into HH:MM:SS form. Shapes it does
// not recognise come back as their string coercion unchanged; the caller is
// responsible for rejecting them via IsValid.
func Normalize(v Value) string {
	if v.Kind == Number {
		totalMinutes := int(math.Round(v.Num * 24 * 60))
		return fmt.Sprintf("%02d:%02d:00", totalMinutes/60, totalMinutes%60)
	}

	s := strings.TrimSpace(v.Text)
	switch {
	case fullPattern.MatchString(s):
		return s
	case hourMinute.MatchString(s):
		parts := strings.SplitN(s, ":", 2)
		hour := parts[0]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		return hour + ":" + parts[1] + ":00"
	default:
		return s
	}
}

// IsValid accepts strictly formed HH:MM:SS strings with hours 0-23, minutes
// 0-59 and seconds 0-59.
func IsValid(s string) bool {
	return validityCheck.MatchString(s)
}
