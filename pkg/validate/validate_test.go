package validate_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/loader"
	"offboard/pkg/schema"
	"offboard/pkg/validate"
)

func load(t *testing.T, content string, required ...string) *loader.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	src, err := loader.New(nil).Load("roster", path, required...)
	require.NoError(t, err)
	return src
}

func issues(t *testing.T, err error) []pkgerrors.Issue {
	t.Helper()
	var ve *pkgerrors.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Issues
}

func TestTable_Valid(t *testing.T) {
	src := load(t, "id,status\n1,active\n2,inactive\n", "id", "status")
	statuses := schema.NewStatusSet(nil, nil)

	err := validate.Table(src, validate.Rules{
		Critical:     []string{"id", "status"},
		IDColumn:     "id",
		UniqueIDs:    true,
		StatusColumn: "status",
		Statuses:     &statuses,
	})
	assert.NoError(t, err)
}

func TestTable_NullCriticalField(t *testing.T) {
	src := load(t, "id,status,name\n1,active,Ana\n2,,Bo\n,active,Cy\n4,active,NULL\n", "id", "status")

	err := validate.Table(src, validate.Rules{
		Critical: []string{"id", "status", "name"},
		IDColumn: "id",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidationError(err))

	got := issues(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, pkgerrors.Issue{Line: 3, Column: "status", ID: "2", Message: "null value in critical field"}, got[0])
	assert.Equal(t, 4, got[1].Line)
	assert.Equal(t, "id", got[1].Column)
	assert.Empty(t, got[1].ID)
	assert.Equal(t, "name", got[2].Column)
}

func TestTable_DuplicateIdentifier(t *testing.T) {
	src := load(t, "id,status\nA@x.io,active\nb@x.io,active\na@X.io,inactive\n", "id", "status")

	err := validate.Table(src, validate.Rules{IDColumn: "id", UniqueIDs: true})
	got := issues(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line)
	assert.Contains(t, got[0].Message, "first seen on line 2")

	// Case-sensitive identifiers are distinct.
	assert.NoError(t, validate.Table(src, validate.Rules{IDColumn: "id", UniqueIDs: true, CaseSensitive: true}))
}

func TestTable_UnknownStatus(t *testing.T) {
	src := load(t, "id,status\n1,active\n2,on leave\n", "id", "status")
	statuses := schema.NewStatusSet(nil, nil)

	err := validate.Table(src, validate.Rules{IDColumn: "id", StatusColumn: "status", Statuses: &statuses})
	got := issues(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `unrecognized status "on leave"`)
}

func TestTable_ResolvedColumnNames(t *testing.T) {
	src := load(t, "Work Email,Reason\n,quit\n", "work_email")

	err := validate.Table(src, validate.Rules{Critical: []string{"work_email"}})
	got := issues(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "work_email", got[0].Column)
	assert.Equal(t, 2, got[0].Line)
}

func TestTable_EmptyTable(t *testing.T) {
	src := load(t, "id\n", "id")
	assert.NoError(t, validate.Table(src, validate.Rules{Critical: []string{"id"}, UniqueIDs: true, IDColumn: "id"}))
}
