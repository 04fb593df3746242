package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger is a trace-level JSON logger that records into a buffer so
// tests can inspect what a stage reported.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// Entry is one decoded log event.
type Entry map[string]any

// Message returns the event message.
func (e Entry) Message() string {
	s, _ := e[zerolog.MessageFieldName].(string)
	return s
}

// Int returns a numeric field; JSON numbers decode as float64.
func (e Entry) Int(key string) int {
	f, _ := e[key].(float64)
	return int(f)
}

// NewTestLogger creates a JSON logger at trace level writing to a buffer.
// The global level is restored when the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	buf := &bytes.Buffer{}
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
	})

	logger := zerolog.New(buf).Level(zerolog.TraceLevel)
	return &TestLogger{Logger: &logger, Buffer: buf}
}

// Entries decodes every captured event, skipping lines that are not JSON.
func (tl *TestLogger) Entries() []Entry {
	var entries []Entry
	for _, line := range bytes.Split(tl.Buffer.Bytes(), []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// Find returns the first event with the given message.
func (tl *TestLogger) Find(message string) (Entry, bool) {
	for _, e := range tl.Entries() {
		if e.Message() == message {
			return e, true
		}
	}
	return nil, false
}

// Contains reports whether any captured output contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Buffer.String(), substr)
}
