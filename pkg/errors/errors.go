// Package errors defines the failure taxonomy of a reconciliation run.
// Every failure is one of SchemaError, ValidationError or IOError; none
// is retried, all abort the run before an output file is produced.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors through errors.Is.
var (
	// ErrSchema indicates a table lacks columns later stages need.
	ErrSchema = errors.New("schema error")

	// ErrValidation indicates a row failed a content check.
	ErrValidation = errors.New("validation error")

	// ErrIO indicates a file could not be read or written.
	ErrIO = errors.New("io error")
)

// SchemaError reports required columns missing from a table.
type SchemaError struct {
	File    string
	Table   string
	Missing []string
	Message string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Table != "" {
		b.WriteString(" in " + e.Table)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " (%s)", e.File)
	}
	b.WriteString(": ")
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing required columns %s", quoteList(e.Missing))
		if e.Message != "" {
			b.WriteString("; " + e.Message)
		}
		return b.String()
	}
	b.WriteString(e.Message)
	return b.String()
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a SchemaError for the given missing columns.
func NewSchemaError(table, file string, missing ...string) *SchemaError {
	return &SchemaError{Table: table, File: file, Missing: missing}
}

// Issue is a single row-level problem found during validation.
type Issue struct {
	Line    int
	Column  string
	ID      string
	Message string
}

// String renders the issue as "line N, column C (id X): message".
func (i Issue) String() string {
	var parts []string
	if i.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", i.Line))
	}
	if i.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", i.Column))
	}
	loc := strings.Join(parts, ", ")
	if i.ID != "" {
		loc += fmt.Sprintf(" (id %s)", i.ID)
	}
	if loc == "" {
		return i.Message
	}
	return loc + ": " + i.Message
}

// maxReportedIssues bounds how many issues Error renders.
const maxReportedIssues = 20

// ValidationError reports one or more rows with invalid content.
type ValidationError struct {
	File   string
	Table  string
	Issues []Issue
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Table != "" {
		b.WriteString(" for " + e.Table)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " (%s)", e.File)
	}
	switch len(e.Issues) {
	case 0:
		return b.String()
	case 1:
		b.WriteString(": " + e.Issues[0].String())
		return b.String()
	}
	fmt.Fprintf(&b, ": %d issues", len(e.Issues))
	for i, issue := range e.Issues {
		if i == maxReportedIssues {
			fmt.Fprintf(&b, "; ... %d more", len(e.Issues)-maxReportedIssues)
			break
		}
		b.WriteString("; " + issue.String())
	}
	return b.String()
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError with the given issues.
func NewValidationError(table, file string, issues ...Issue) *ValidationError {
	return &ValidationError{Table: table, File: file, Issues: issues}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "sync"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, msg)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, msg)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// WrapIO wraps err as an IOError; nil stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// IsSchemaError checks if an error is a schema error
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsSchemaError(err):
		return 2
	case IsValidationError(err):
		return 3
	case IsIOError(err):
		return 4
	default:
		return 1
	}
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
