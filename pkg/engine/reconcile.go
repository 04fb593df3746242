package engine

import (
	"strings"

	"offboard/pkg/schema"
)

// Options controls how candidates are selected and rendered. Column names
// are actual roster headers.
type Options struct {
	// OutputColumns are copied from the roster row, in this order.
	OutputColumns []string

	// StatusColumn is rewritten to InactiveValue in every candidate.
	StatusColumn  string
	InactiveValue string

	// TerminatedValue, when set, restricts terminations to rows whose
	// status equals it case-insensitively.
	TerminatedValue string
}

// Result contains the outcome of reconciling terminations against the roster.
type Result struct {
	Candidates []schema.InactivationCandidate `json:"candidates"`
	Columns    []string                       `json:"columns"`

	// Terminated is the set of normalized identifiers the terminations
	// table contributed.
	Terminated map[string]bool `json:"-"`

	// Unmatched lists terminated identifiers absent from the roster, in
	// terminations order.
	Unmatched []string `json:"unmatched"`

	Stats Stats `json:"stats"`
}

// Stats contains aggregate statistics about one reconciliation.
type Stats struct {
	RosterRecords         int `json:"rosterRecords" yaml:"roster_records"`
	ActiveRecords         int `json:"activeRecords" yaml:"active_records"`
	InactiveRecords       int `json:"inactiveRecords" yaml:"inactive_records"`
	TerminationRecords    int `json:"terminationRecords" yaml:"termination_records"`
	TerminatedIDs         int `json:"terminatedIds" yaml:"terminated_ids"`
	SkippedTerminations   int `json:"skippedTerminations" yaml:"skipped_terminations"`
	UnmatchedTerminations int `json:"unmatchedTerminations" yaml:"unmatched_terminations"`
	AlreadyInactive       int `json:"alreadyInactive" yaml:"already_inactive"`
	Candidates            int `json:"candidates" yaml:"candidates"`
}

// Reconcile selects the active roster users that appear in terminations:
//  1. keep roster rows whose status is active
//  2. collect the identifiers present in terminations
//  3. intersect
//  4. deduplicate by identifier, first occurrence wins
//
// Candidates follow roster file order. Terminated identifiers that are not
// in the roster, or are already inactive there, are counted and skipped.
func Reconcile(index *RosterIndex, terminations []schema.TerminationRecord, opts Options) *Result {
	result := &Result{
		Candidates: make([]schema.InactivationCandidate, 0),
		Columns:    opts.OutputColumns,
		Terminated: make(map[string]bool, len(terminations)),
		Unmatched:  make([]string, 0),
	}
	result.Stats.RosterRecords = index.Stats.TotalRecords
	result.Stats.ActiveRecords = index.Stats.ActiveCount
	result.Stats.InactiveRecords = index.Stats.InactiveCount
	result.Stats.TerminationRecords = len(terminations)

	for _, term := range terminations {
		if opts.TerminatedValue != "" && !strings.EqualFold(term.Status, opts.TerminatedValue) {
			result.Stats.SkippedTerminations++
			continue
		}
		if term.ID == "" || result.Terminated[term.ID] {
			continue
		}
		result.Terminated[term.ID] = true

		rec, ok := index.Lookup(term.ID)
		switch {
		case !ok:
			result.Unmatched = append(result.Unmatched, term.ID)
		case rec.Status == schema.StatusInactive:
			result.Stats.AlreadyInactive++
		}
	}
	result.Stats.TerminatedIDs = len(result.Terminated)
	result.Stats.UnmatchedTerminations = len(result.Unmatched)

	emitted := make(map[string]bool)
	for _, rec := range index.Order {
		if rec.Status != schema.StatusActive || !result.Terminated[rec.ID] || emitted[rec.ID] {
			continue
		}
		emitted[rec.ID] = true
		result.Candidates = append(result.Candidates, newCandidate(rec, opts))
	}
	result.Stats.Candidates = len(result.Candidates)

	return result
}

func newCandidate(rec *schema.UserRecord, opts Options) schema.InactivationCandidate {
	fields := make(map[string]string, len(opts.OutputColumns))
	for _, col := range opts.OutputColumns {
		v, ok := rec.Fields[col]
		if !ok {
			continue
		}
		if col == opts.StatusColumn {
			v = opts.InactiveValue
		}
		fields[col] = v
	}
	return schema.InactivationCandidate{
		ID:     rec.ID,
		RawID:  rec.RawID,
		Line:   rec.Line,
		Fields: fields,
	}
}
