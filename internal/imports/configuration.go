package imports

import (
	"strings"

	"github.com/patrickmb/timetable-import-api/internal/models"
)

// constraintMarkers identify settings that carry a constraint-weight string.
var constraintMarkers = []string{"Conflict", "Grouped", "After", "Building"}

// settings is the bucketed output of the optional Configuration section.
type settings struct {
	Duration    int64
	Constraints map[string]string
	Misc        map[string]string
}

// extractConfiguration reads the free-form (setting, value) section. The
// section's absence and malformed rows are warnings only; the import still
// succeeds with defaults. An unparsable duration value is a hard error since
// it would silently change the solving budget.
func extractConfiguration(src source) (settings, []Issue, []Issue) {
	cfg := settings{
		Duration:    models.DefaultSolvingDuration,
		Constraints: map[string]string{},
		Misc:        map[string]string{},
	}

	rows, ok := src.section(SectionConfiguration)
	if !ok {
		warning := sectionIssue(SectionConfiguration,
			"optional sheet %q not found, using default values", SectionConfiguration)
		return cfg, nil, []Issue{warning}
	}

	var (
		errs     []Issue
		warnings []Issue
	)
	for idx, row := range rows {
		if !row.Has("setting") || !row.Has("value") {
			warnings = append(warnings, rowIssue(SectionConfiguration, idx,
				"incomplete row skipped (setting: %s, value: %s)", row.String("setting"), row.String("value")))
			continue
		}

		name := row.String("setting")
		if name == "duration" {
			duration, ok := row.Int("value")
			if !ok || duration <= 0 {
				errs = append(errs, rowIssue(SectionConfiguration, idx,
					"duration must be a positive integer: %s", row.String("value")))
				continue
			}
			cfg.Duration = duration
			continue
		}

		if isConstraintSetting(name) {
			cfg.Constraints[name] = row.String("value")
			continue
		}

		cfg.Misc[name] = row.String("value")
	}

	return cfg, errs, warnings
}

func isConstraintSetting(name string) bool {
	for _, marker := range constraintMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
