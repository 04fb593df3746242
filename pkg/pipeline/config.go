package pipeline

import (
	"time"

	"offboard/pkg/schema"
)

// Config is everything one reconciliation run needs. Column names are as
// they appear in the exports; matching also accepts differences in case,
// spacing, underscores and hyphens.
type Config struct {
	RosterPath       string
	TerminationsPath string

	RosterID       string
	RosterStatus   string
	RosterCritical []string

	TerminationID       string
	TerminationStatus   string
	TerminatedValue     string
	TerminationCritical []string

	// ActiveValues and InactiveValues classify roster statuses; nil means
	// the schema defaults.
	ActiveValues   []string
	InactiveValues []string
	CaseSensitive  bool

	// OutputPath wins over OutputDir when set.
	OutputDir     string
	OutputPath    string
	OutputColumns []string
	InactiveValue string

	// RunDate names the output file; zero means today.
	RunDate time.Time

	SummaryPath string
	DryRun      bool
}

// DefaultConfig returns the column layout of the roster and terminations
// exports this tool was first written for.
func DefaultConfig() Config {
	return Config{
		RosterID:          "email",
		RosterStatus:      "active",
		RosterCritical:    []string{"first_name", "last_name"},
		TerminationID:     "Work Email",
		TerminationStatus: "Employment Status",
		TerminatedValue:   "Terminated",
		ActiveValues:      schema.DefaultActiveValues,
		InactiveValues:    schema.DefaultInactiveValues,
		OutputDir:         ".",
		InactiveValue:     "FALSE",
	}
}

func (c Config) runDate() time.Time {
	if c.RunDate.IsZero() {
		return time.Now()
	}
	return c.RunDate
}
