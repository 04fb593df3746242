// Package loader reads an input export into a parsed table and enforces
// the columns later stages depend on.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/parser"
	"offboard/pkg/schema"
)

// Source is a loaded table together with where it came from and how the
// configured column names map onto its headers.
type Source struct {
	Name  string
	Path  string
	Table *parser.Table

	columns map[string]string
}

// Column returns the header that a configured column name resolved to.
// Names that were not required are returned unchanged.
func (s *Source) Column(name string) string {
	if h, ok := s.columns[name]; ok {
		return h
	}
	return name
}

// Loader loads CSV exports from disk.
type Loader struct {
	logger *zerolog.Logger
}

// New creates a Loader that reports parse warnings to logger.
func New(logger *zerolog.Logger) *Loader {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Loader{logger: logger}
}

// Load reads path and returns it as a Source named name. It fails with an
// IOError when the file cannot be read, a SchemaError when the header row is
// absent, duplicated or lacks any of required, and a ValidationError when a
// record is not valid CSV.
func (l *Loader) Load(name, path string, required ...string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.WrapIO("read", path, err)
	}

	table, err := parser.Parse(data)
	if err != nil {
		return nil, l.parseError(name, path, required, err)
	}

	if dups := schema.DuplicateHeaders(table.Headers); len(dups) > 0 {
		return nil, &pkgerrors.SchemaError{
			Table:   name,
			File:    path,
			Message: fmt.Sprintf("duplicate column names %s", strings.Join(quoteAll(dups), ", ")),
		}
	}

	resolved, missing := schema.Resolve(table.Headers, required...)
	if len(missing) > 0 {
		se := pkgerrors.NewSchemaError(name, path, missing...)
		se.Message = suggestions(table.Headers, missing)
		return nil, se
	}

	for _, w := range table.Warnings {
		l.logger.Warn().
			Str("table", name).
			Str("file", path).
			Int("line", w.Line).
			Msg(w.Message)
	}
	for want, got := range resolved {
		if want != got {
			l.logger.Debug().Str("table", name).Str("column", want).Str("header", got).Msg("Resolved column by normalized name")
		}
	}

	l.logger.Info().
		Str("table", name).
		Str("file", path).
		Str("encoding", table.Encoding).
		Int("rows", table.Len()).
		Msg("Loaded table")

	return &Source{
		Name:    name,
		Path:    path,
		Table:   table,
		columns: resolved,
	}, nil
}

func (l *Loader) parseError(name, path string, required []string, err error) error {
	if errors.Is(err, parser.ErrNoHeader) {
		var missing []string
		for _, r := range required {
			if r = strings.TrimSpace(r); r != "" {
				missing = append(missing, r)
			}
		}
		se := pkgerrors.NewSchemaError(name, path, missing...)
		se.Message = "no header row"
		return se
	}

	var re *parser.RecordError
	if errors.As(err, &re) {
		return pkgerrors.NewValidationError(name, path, pkgerrors.Issue{
			Line:    re.Line,
			Message: fmt.Sprintf("malformed CSV record: %v", re.Err),
		})
	}

	return pkgerrors.WrapIO("decode", path, err)
}

// suggestions renders "did you mean" hints for missing columns.
func suggestions(headers, missing []string) string {
	var hints []string
	for _, m := range missing {
		if s := schema.Suggest(headers, m); len(s) > 0 {
			hints = append(hints, fmt.Sprintf("for %q did you mean %s?", m, strings.Join(quoteAll(s), " or ")))
		}
	}
	return strings.Join(hints, " ")
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
