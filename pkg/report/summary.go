package report

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"offboard/pkg/engine"
	"offboard/pkg/schema"
)

// Summary is the end-of-run report of a reconciliation.
type Summary struct {
	RunDate      string       `json:"runDate" yaml:"run_date"`
	Roster       string       `json:"roster" yaml:"roster"`
	Terminations string       `json:"terminations" yaml:"terminations"`
	Output       string       `json:"output,omitempty" yaml:"output,omitempty"`
	DryRun       bool         `json:"dryRun" yaml:"dry_run"`
	Stats        engine.Stats `json:"stats" yaml:"stats"`
	Candidates   []string     `json:"candidates" yaml:"candidates"`
	Unmatched    []string     `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
}

// Sample is a short human description of one candidate for logs.
type Sample struct {
	ID   string
	Name string
}

// NewSummary compiles a Summary from a reconciliation result. Candidates
// are listed by their roster spelling, as in the output file.
func NewSummary(result *engine.Result) *Summary {
	ids := make([]string, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		id := c.RawID
		if id == "" {
			id = c.ID
		}
		ids = append(ids, id)
	}
	return &Summary{
		Stats:      result.Stats,
		Candidates: ids,
		Unmatched:  result.Unmatched,
	}
}

// Samples returns up to n candidates with their display names, built from
// the first/last name columns when the output carries them.
func Samples(candidates []schema.InactivationCandidate, n int, nameColumns ...string) []Sample {
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]Sample, 0, n)
	for _, c := range candidates[:n] {
		var parts []string
		for _, col := range nameColumns {
			if v := strings.TrimSpace(c.Fields[col]); v != "" {
				parts = append(parts, v)
			}
		}
		out = append(out, Sample{ID: c.ID, Name: strings.Join(parts, " ")})
	}
	return out
}

// Format selects a summary encoding.
type Format string

const (
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
)

// FormatForPath picks JSON for ".json" and YAML otherwise.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Encode writes s to w in the given format.
func (s *Summary) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	default:
		data, err := yaml.MarshalWithOptions(s,
			yaml.Indent(2),
			yaml.IndentSequence(false),
		)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

// WriteSummary writes s atomically to path, encoded by its extension.
func WriteSummary(path string, s *Summary) error {
	format := FormatForPath(path)
	return WriteAtomic(path, func(w io.Writer) error {
		return s.Encode(w, format)
	})
}

// StageSummary stages s for path, encoded by its extension.
func StageSummary(path string, s *Summary) (*Staged, error) {
	format := FormatForPath(path)
	return Stage(path, func(w io.Writer) error {
		return s.Encode(w, format)
	})
}
