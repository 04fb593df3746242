package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("empty file: no header row found")

// ParseWarning represents a non-fatal issue encountered during CSV parsing.
type ParseWarning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// RecordError reports a CSV record that could not be decoded.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Row is one data record keyed by header name.
type Row struct {
	// Line is the 1-based line the record starts on; the header is line 1.
	Line   int
	Values map[string]string
}

// Get returns the raw value of column, or "" when absent.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// Table is a parsed CSV file with rows kept in file order.
type Table struct {
	Headers  []string       `json:"headers"`
	Rows     []Row          `json:"rows"`
	Encoding string         `json:"encoding"`
	Warnings []ParseWarning `json:"warnings"`
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Parse decodes CSV bytes into a Table. A header with no data rows yields
// an empty table, not an error. Rows with too few fields are padded to the
// header width and recorded as warnings. A row with too many fields, or a
// record the CSV reader rejects, fails the whole parse with a RecordError.
func Parse(data []byte) (*Table, error) {
	// Detect encoding and convert to UTF-8
	decoded, enc, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Field counts are reconciled against the header below.
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, &RecordError{Line: 1, Err: err}
	}

	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) == 1 && headers[0] == "" {
		return nil, ErrNoHeader
	}

	table := &Table{
		Headers:  headers,
		Rows:     make([]Row, 0),
		Encoding: enc,
	}
	headerCount := len(headers)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return nil, &RecordError{Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)

		if len(record) > headerCount {
			return nil, &RecordError{
				Line: line,
				Err:  fmt.Errorf("row has %d columns, expected %d", len(record), headerCount),
			}
		}
		if len(record) < headerCount {
			table.Warnings = append(table.Warnings, ParseWarning{
				Line:    line,
				Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(record), headerCount),
			})
			padded := make([]string, headerCount)
			copy(padded, record)
			record = padded
		}

		values := make(map[string]string, headerCount)
		for i, h := range headers {
			values[h] = record[i]
		}
		table.Rows = append(table.Rows, Row{Line: line, Values: values})
	}

	return table, nil
}
