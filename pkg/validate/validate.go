// Package validate checks loaded tables for content defects before any
// reconciliation happens. A defect anywhere fails the whole run.
package validate

import (
	"fmt"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/loader"
	"offboard/pkg/schema"
)

// Rules describes what makes a table's rows acceptable. Column names are
// as configured and are resolved through the Source.
type Rules struct {
	// Critical columns must be non-null in every row.
	Critical []string

	// IDColumn, when set, labels issues with the row identifier.
	IDColumn string

	// UniqueIDs rejects identifiers that repeat after normalization.
	UniqueIDs     bool
	CaseSensitive bool

	// StatusColumn, when set with Statuses, rejects values that are
	// neither active nor inactive.
	StatusColumn string
	Statuses     *schema.StatusSet
}

// Table checks every row of src against rules and returns a
// ValidationError listing all issues, or nil.
func Table(src *loader.Source, rules Rules) error {
	idCol := ""
	if rules.IDColumn != "" {
		idCol = src.Column(rules.IDColumn)
	}
	critical := make([]string, 0, len(rules.Critical))
	seenCol := make(map[string]bool, len(rules.Critical))
	for _, c := range rules.Critical {
		if c == "" || seenCol[c] {
			continue
		}
		seenCol[c] = true
		critical = append(critical, c)
	}

	var issues []pkgerrors.Issue
	firstLine := make(map[string]int)

	for _, row := range src.Table.Rows {
		id := ""
		if idCol != "" {
			id = row.Get(idCol)
			if schema.IsNull(id) {
				id = ""
			}
		}

		for _, c := range critical {
			if schema.IsNull(row.Get(src.Column(c))) {
				issues = append(issues, pkgerrors.Issue{
					Line:    row.Line,
					Column:  c,
					ID:      id,
					Message: "null value in critical field",
				})
			}
		}

		if rules.StatusColumn != "" && rules.Statuses != nil {
			raw := row.Get(src.Column(rules.StatusColumn))
			if !schema.IsNull(raw) && rules.Statuses.Classify(raw) == schema.StatusUnknown {
				issues = append(issues, pkgerrors.Issue{
					Line:    row.Line,
					Column:  rules.StatusColumn,
					ID:      id,
					Message: fmt.Sprintf("unrecognized status %q", raw),
				})
			}
		}

		if rules.UniqueIDs && id != "" {
			key := schema.NormalizeID(id, rules.CaseSensitive)
			if first, dup := firstLine[key]; dup {
				issues = append(issues, pkgerrors.Issue{
					Line:    row.Line,
					Column:  rules.IDColumn,
					ID:      id,
					Message: fmt.Sprintf("duplicate identifier, first seen on line %d", first),
				})
			} else {
				firstLine[key] = row.Line
			}
		}
	}

	if len(issues) > 0 {
		return pkgerrors.NewValidationError(src.Name, src.Path, issues...)
	}
	return nil
}
