package schema

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"offboard/pkg/parser"
)

// Default status vocabularies, compared case-insensitively.
var (
	DefaultActiveValues   = []string{"true", "active", "yes", "y", "1", "enabled"}
	DefaultInactiveValues = []string{"false", "inactive", "no", "n", "0", "disabled", "terminated"}
)

// nullTokens are the spreadsheet placeholders read as missing values.
// Matching is exact, the way pandas treats its default NA markers.
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"NULL": true,
	"null": true,
	"NaN":  true,
	"nan":  true,
	"None": true,
	"<NA>": true,
}

// IsNull reports whether a raw cell value counts as missing.
func IsNull(value string) bool {
	return nullTokens[strings.TrimSpace(value)]
}

// NormalizeID returns the comparison key of an identifier: NFC-composed,
// trimmed and, unless caseSensitive, lowercased. Exports from different
// systems disagree on both Unicode form and e-mail casing.
func NormalizeID(raw string, caseSensitive bool) string {
	s := strings.TrimSpace(norm.NFC.String(raw))
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// StatusSet classifies raw roster status values.
type StatusSet struct {
	active   map[string]bool
	inactive map[string]bool
}

// NewStatusSet builds a StatusSet; nil slices fall back to the defaults.
func NewStatusSet(active, inactive []string) StatusSet {
	if active == nil {
		active = DefaultActiveValues
	}
	if inactive == nil {
		inactive = DefaultInactiveValues
	}
	return StatusSet{
		active:   toSet(active),
		inactive: toSet(inactive),
	}
}

// Classify maps a raw status onto Active, Inactive or Unknown. A value in
// both sets is treated as inactive so it can never produce a candidate.
func (s StatusSet) Classify(raw string) Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s.inactive[key]:
		return StatusInactive
	case s.active[key]:
		return StatusActive
	default:
		return StatusUnknown
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return set
}

// NormalizeRoster turns roster rows into UserRecords. idColumn and
// statusColumn are actual header names of the table.
func NormalizeRoster(table *parser.Table, idColumn, statusColumn string, statuses StatusSet, caseSensitive bool) []UserRecord {
	result := make([]UserRecord, 0, table.Len())

	for _, row := range table.Rows {
		rawID := row.Get(idColumn)
		rawStatus := row.Get(statusColumn)
		result = append(result, UserRecord{
			ID:        NormalizeID(rawID, caseSensitive),
			RawID:     rawID,
			Status:    statuses.Classify(rawStatus),
			RawStatus: rawStatus,
			Line:      row.Line,
			Fields:    row.Values,
		})
	}

	return result
}

// NormalizeTerminations turns terminations rows into TerminationRecords.
// statusColumn may be empty when the export carries no status.
func NormalizeTerminations(table *parser.Table, idColumn, statusColumn string, caseSensitive bool) []TerminationRecord {
	result := make([]TerminationRecord, 0, table.Len())

	for _, row := range table.Rows {
		rawID := row.Get(idColumn)
		rec := TerminationRecord{
			ID:     NormalizeID(rawID, caseSensitive),
			RawID:  rawID,
			Line:   row.Line,
			Fields: row.Values,
		}
		if statusColumn != "" {
			rec.Status = strings.TrimSpace(row.Get(statusColumn))
		}
		result = append(result, rec)
	}

	return result
}
