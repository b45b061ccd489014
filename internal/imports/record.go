package imports

import (
	"strconv"
	"strings"

	"github.com/patrickmb/timetable-import-api/internal/timefmt"
)

// Record is one raw row of a section, keyed by the section's declared field
// names. Values carry the encoding tag decided at the input boundary.
type Record map[string]timefmt.Value

// Has reports whether the field is present with a non-blank value.
func (r Record) Has(name string) bool {
	v, ok := r[name]
	if !ok {
		return false
	}
	if v.Kind == timefmt.Number {
		return true
	}
	return strings.TrimSpace(v.Text) != ""
}

// Raw returns the tagged value for the field, zero Value when absent.
func (r Record) Raw(name string) timefmt.Value {
	return r[name]
}

// String returns the trimmed string coercion of the field.
func (r Record) String(name string) string {
	return strings.TrimSpace(r[name].String())
}

// Int strictly parses the field as an integer. Numeric cells must hold an
// integral value; text cells must parse completely.
func (r Record) Int(name string) (int64, bool) {
	v, ok := r[name]
	if !ok {
		return 0, false
	}
	if v.Kind == timefmt.Number {
		n := int64(v.Num)
		if float64(n) != v.Num {
			return 0, false
		}
		return n, true
	}

	s := strings.TrimSpace(v.Text)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	// Spreadsheet exports occasionally render integers as "3.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int64(f)
		if float64(n) == f {
			return n, true
		}
	}
	return 0, false
}

// Time normalises the field's value into HH:MM:SS form.
func (r Record) Time(name string) string {
	return timefmt.Normalize(r[name])
}

// TruthyPinned interprets the optional pinned encodings: the literal boolean
// true or the case-insensitive string "true". Anything else is false.
func (r Record) TruthyPinned(name string) bool {
	if !r.Has(name) {
		return false
	}
	return strings.EqualFold(r.String(name), "true")
}
