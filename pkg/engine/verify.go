package engine

import (
	"fmt"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/schema"
)

// VerifyOptions names what the candidate table must satisfy. Column names
// are actual roster headers.
type VerifyOptions struct {
	StatusColumn  string
	InactiveValue string

	// Critical columns must be non-null in every candidate that carries them.
	Critical []string
}

// Verify re-checks a Result before it is written: identifiers unique,
// every candidate active in the roster and present in terminations, every
// output column present, status rewritten, no nulls in critical fields.
// Any violation is a ValidationError against the "output" table.
func Verify(index *RosterIndex, result *Result, opts VerifyOptions) error {
	var issues []pkgerrors.Issue
	seen := make(map[string]bool, len(result.Candidates))

	for _, c := range result.Candidates {
		issue := func(column, format string, args ...any) {
			issues = append(issues, pkgerrors.Issue{
				Line:    c.Line,
				Column:  column,
				ID:      c.ID,
				Message: fmt.Sprintf(format, args...),
			})
		}

		if seen[c.ID] {
			issue("", "duplicate identifier in output")
		}
		seen[c.ID] = true

		rec, ok := index.Lookup(c.ID)
		switch {
		case !ok:
			issue("", "identifier not in roster")
		case rec.Status != schema.StatusActive:
			issue("", "user was not active in roster (status %q)", rec.RawStatus)
		}

		if !result.Terminated[c.ID] {
			issue("", "identifier not in terminations")
		}

		for _, col := range result.Columns {
			if _, ok := c.Fields[col]; !ok {
				issue(col, "output column missing")
			}
		}

		if v, ok := c.Fields[opts.StatusColumn]; ok && v != opts.InactiveValue {
			issue(opts.StatusColumn, "status is %q, want %q", v, opts.InactiveValue)
		}

		for _, col := range opts.Critical {
			if v, ok := c.Fields[col]; ok && schema.IsNull(v) {
				issue(col, "null value in critical field")
			}
		}
	}

	if len(issues) > 0 {
		return pkgerrors.NewValidationError("output", "", issues...)
	}
	return nil
}
