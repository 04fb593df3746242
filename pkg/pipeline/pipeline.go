// Package pipeline runs one reconciliation end to end:
// Load → Validate → Reconcile → Verify → Write.
package pipeline

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"offboard/pkg/engine"
	"offboard/pkg/loader"
	"offboard/pkg/report"
	"offboard/pkg/schema"
	"offboard/pkg/validate"
)

const (
	rosterTable       = "roster"
	terminationsTable = "terminations"

	sampleSize = 3
)

// Inputs are the two validated sources of a run.
type Inputs struct {
	Roster       *loader.Source
	Terminations *loader.Source
}

// Outcome describes a completed run.
type Outcome struct {
	// OutputPath is where the candidate table was, or in a dry run would
	// have been, written.
	OutputPath string
	Written    bool

	Result  *engine.Result
	Summary *report.Summary
}

// Reconciler runs reconciliations with a fixed configuration.
type Reconciler struct {
	cfg    Config
	logger *zerolog.Logger
	loader *loader.Loader
}

// New creates a Reconciler. A nil logger discards all output.
func New(cfg Config, logger *zerolog.Logger) *Reconciler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Reconciler{
		cfg:    cfg,
		logger: logger,
		loader: loader.New(logger),
	}
}

// Check loads and validates both inputs without reconciling them.
func (r *Reconciler) Check(ctx context.Context) (*Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roster, err := r.loader.Load(rosterTable, r.cfg.RosterPath, r.rosterRequired()...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms, err := r.loader.Load(terminationsTable, r.cfg.TerminationsPath, r.terminationsRequired()...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statuses := r.statuses()
	if err := validate.Table(roster, validate.Rules{
		Critical:      r.rosterCritical(),
		IDColumn:      r.cfg.RosterID,
		UniqueIDs:     true,
		CaseSensitive: r.cfg.CaseSensitive,
		StatusColumn:  r.cfg.RosterStatus,
		Statuses:      &statuses,
	}); err != nil {
		return nil, err
	}
	if err := validate.Table(terms, validate.Rules{
		Critical: append([]string{r.cfg.TerminationID}, r.cfg.TerminationCritical...),
		IDColumn: r.cfg.TerminationID,
	}); err != nil {
		return nil, err
	}

	r.logger.Debug().
		Int("roster_rows", roster.Table.Len()).
		Int("termination_rows", terms.Table.Len()).
		Msg("Inputs validated")

	return &Inputs{Roster: roster, Terminations: terms}, nil
}

// Run performs the whole reconciliation and writes the candidate table
// unless the configuration asks for a dry run. Nothing is written when any
// stage fails.
func (r *Reconciler) Run(ctx context.Context) (*Outcome, error) {
	in, err := r.Check(ctx)
	if err != nil {
		return nil, err
	}

	roster, terms := in.Roster, in.Terminations
	statusColumn := roster.Column(r.cfg.RosterStatus)

	users := schema.NormalizeRoster(roster.Table,
		roster.Column(r.cfg.RosterID), statusColumn,
		r.statuses(), r.cfg.CaseSensitive)

	termStatus := ""
	if r.cfg.TerminationStatus != "" {
		termStatus = terms.Column(r.cfg.TerminationStatus)
	}
	terminations := schema.NormalizeTerminations(terms.Table,
		terms.Column(r.cfg.TerminationID), termStatus, r.cfg.CaseSensitive)

	index := engine.BuildRosterIndex(users)
	columns := r.outputColumns(roster)

	opts := engine.Options{
		OutputColumns: columns,
		StatusColumn:  statusColumn,
		InactiveValue: r.cfg.InactiveValue,
	}
	if termStatus != "" {
		opts.TerminatedValue = r.cfg.TerminatedValue
	}
	result := engine.Reconcile(index, terminations, opts)

	for _, id := range result.Unmatched {
		r.logger.Debug().Str("id", id).Msg("Terminated identifier not in roster")
	}

	if err := engine.Verify(index, result, engine.VerifyOptions{
		StatusColumn:  statusColumn,
		InactiveValue: r.cfg.InactiveValue,
		Critical:      r.outputCritical(roster, columns),
	}); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runDate := r.cfg.runDate()
	outcome := &Outcome{
		OutputPath: r.cfg.OutputPath,
		Result:     result,
	}
	if outcome.OutputPath == "" {
		outcome.OutputPath = report.OutputPath(r.cfg.OutputDir, runDate)
	}

	summary := report.NewSummary(result)
	summary.RunDate = runDate.Format(report.DateLayout)
	summary.Roster = r.cfg.RosterPath
	summary.Terminations = r.cfg.TerminationsPath
	summary.Output = outcome.OutputPath
	summary.DryRun = r.cfg.DryRun
	outcome.Summary = summary

	r.logStats(result, roster)

	if err := r.write(outcome, columns); err != nil {
		return nil, err
	}
	return outcome, nil
}

// write stages the output file and the summary before committing either,
// so a failure in one leaves neither on disk.
func (r *Reconciler) write(outcome *Outcome, columns []string) error {
	var output, summary *report.Staged
	discard := func() {
		output.Discard()
		summary.Discard()
	}

	var err error
	if !r.cfg.DryRun {
		if output, err = report.StageCSV(outcome.OutputPath, columns, outcome.Result.Candidates); err != nil {
			return err
		}
	}
	if r.cfg.SummaryPath != "" {
		if summary, err = report.StageSummary(r.cfg.SummaryPath, outcome.Summary); err != nil {
			discard()
			return err
		}
	}

	if output != nil {
		if err := output.Commit(); err != nil {
			discard()
			return err
		}
		outcome.Written = true
		r.logger.Info().
			Str("file", outcome.OutputPath).
			Int("candidates", len(outcome.Result.Candidates)).
			Msg("Wrote inactivation list")
	} else {
		r.logger.Info().Str("file", outcome.OutputPath).Msg("Dry run, skipping write")
	}

	if summary != nil {
		if err := summary.Commit(); err != nil {
			if outcome.Written {
				_ = os.Remove(outcome.OutputPath)
				outcome.Written = false
			}
			return err
		}
		r.logger.Info().Str("file", r.cfg.SummaryPath).Msg("Wrote run summary")
	}
	return nil
}

func (r *Reconciler) logStats(result *engine.Result, roster *loader.Source) {
	s := result.Stats
	r.logger.Info().
		Int("roster_records", s.RosterRecords).
		Int("active", s.ActiveRecords).
		Int("inactive", s.InactiveRecords).
		Int("termination_records", s.TerminationRecords).
		Int("terminated_ids", s.TerminatedIDs).
		Int("skipped_terminations", s.SkippedTerminations).
		Int("unmatched_terminations", s.UnmatchedTerminations).
		Int("already_inactive", s.AlreadyInactive).
		Int("candidates", s.Candidates).
		Msg("Reconciliation complete")

	resolved, _ := schema.Resolve(roster.Table.Headers, "first_name", "last_name")
	var names []string
	for _, want := range []string{"first_name", "last_name"} {
		if h, ok := resolved[want]; ok {
			names = append(names, h)
		}
	}
	for _, sample := range report.Samples(result.Candidates, sampleSize, names...) {
		r.logger.Info().Str("id", sample.ID).Str("name", sample.Name).Msg("Candidate")
	}
}

func (r *Reconciler) statuses() schema.StatusSet {
	return schema.NewStatusSet(r.cfg.ActiveValues, r.cfg.InactiveValues)
}

func (r *Reconciler) rosterCritical() []string {
	return append([]string{r.cfg.RosterID, r.cfg.RosterStatus}, r.cfg.RosterCritical...)
}

func (r *Reconciler) rosterRequired() []string {
	return append(r.rosterCritical(), r.cfg.OutputColumns...)
}

func (r *Reconciler) terminationsRequired() []string {
	required := []string{r.cfg.TerminationID}
	if r.cfg.TerminationStatus != "" {
		required = append(required, r.cfg.TerminationStatus)
	}
	return append(required, r.cfg.TerminationCritical...)
}

// outputColumns resolves the configured output columns to roster headers,
// defaulting to every roster column in header order.
func (r *Reconciler) outputColumns(roster *loader.Source) []string {
	if len(r.cfg.OutputColumns) == 0 {
		return append([]string(nil), roster.Table.Headers...)
	}
	columns := make([]string, 0, len(r.cfg.OutputColumns))
	seen := make(map[string]bool, len(r.cfg.OutputColumns))
	for _, c := range r.cfg.OutputColumns {
		h := roster.Column(c)
		if seen[h] {
			continue
		}
		seen[h] = true
		columns = append(columns, h)
	}
	return columns
}

// outputCritical returns the roster critical headers that the output
// carries.
func (r *Reconciler) outputCritical(roster *loader.Source, columns []string) []string {
	inOutput := make(map[string]bool, len(columns))
	for _, c := range columns {
		inOutput[c] = true
	}
	var critical []string
	for _, c := range r.rosterCritical() {
		if h := roster.Column(c); inOutput[h] {
			critical = append(critical, h)
		}
	}
	return critical
}
