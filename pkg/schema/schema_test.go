package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offboard/pkg/parser"
)

func TestResolve(t *testing.T) {
	headers := []string{"first_name", "Work Email", "Employment Status", "email"}

	resolved, missing := Resolve(headers, "email", "work_email", "employment status", "status", "")
	assert.Equal(t, map[string]string{
		"email":             "email",
		"work_email":        "Work Email",
		"employment status": "Employment Status",
	}, resolved)
	assert.Equal(t, []string{"status"}, missing)
}

func TestResolve_ExactBeatsNormalized(t *testing.T) {
	resolved, missing := Resolve([]string{"E-mail", "email"}, "email")
	assert.Empty(t, missing)
	assert.Equal(t, "email", resolved["email"])
}

func TestDuplicateHeaders(t *testing.T) {
	assert.Empty(t, DuplicateHeaders([]string{"a", "b"}))
	assert.Equal(t, []string{"a"}, DuplicateHeaders([]string{"a", "b", "a", "a"}))
}

func TestSuggest(t *testing.T) {
	headers := []string{"first_name", "last_name", "emall", "actve"}
	assert.Equal(t, []string{"actve"}, Suggest(headers, "active"))
	assert.Equal(t, []string{"emall"}, Suggest(headers, "email"))
	assert.Empty(t, Suggest(headers, "department"))
	assert.Empty(t, Suggest(headers, ""))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 1.0, similarity("", ""))
	assert.InDelta(t, 0.0, similarity("abc", "xyz"), 1e-9)
	assert.Equal(t, 1, levenshteinDistance("kitten", "sitten"))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestIsNull(t *testing.T) {
	for _, v := range []string{"", "   ", "NA", "N/A", "NULL", "null", "NaN", "None", " #N/A "} {
		assert.True(t, IsNull(v), "%q should be null", v)
	}
	for _, v := range []string{"Na", "0", "FALSE", "none of the above", "x"} {
		assert.False(t, IsNull(v), "%q should not be null", v)
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeID("  Ana@Example.COM ", false))
	assert.Equal(t, "Ana@Example.COM", NormalizeID("Ana@Example.COM", true))
	// Decomposed "é" composes to the same key as the precomposed form.
	assert.Equal(t, NormalizeID("jos\u00e9", false), NormalizeID("jose\u0301", false))
}

func TestStatusSet_Classify(t *testing.T) {
	set := NewStatusSet(nil, nil)

	tests := []struct {
		raw  string
		want Status
	}{
		{"active", StatusActive},
		{" TRUE ", StatusActive},
		{"Yes", StatusActive},
		{"inactive", StatusInactive},
		{"FALSE", StatusInactive},
		{"0", StatusInactive},
		{"pending", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Classify(tt.raw))
		})
	}
}

func TestStatusSet_OverlapIsInactive(t *testing.T) {
	set := NewStatusSet([]string{"on", "maybe"}, []string{"off", "MAYBE"})
	assert.Equal(t, StatusActive, set.Classify("on"))
	assert.Equal(t, StatusInactive, set.Classify("maybe"))
	assert.Equal(t, StatusUnknown, set.Classify("true"))
}

func TestNormalizeRoster(t *testing.T) {
	table, err := parser.Parse([]byte("email,active,first_name\nA@x.io,TRUE,Ana\nb@x.io,FALSE,Bo\n"))
	require.NoError(t, err)

	users := NormalizeRoster(table, "email", "active", NewStatusSet(nil, nil), false)
	require.Len(t, users, 2)
	assert.Equal(t, "a@x.io", users[0].ID)
	assert.Equal(t, "A@x.io", users[0].RawID)
	assert.Equal(t, StatusActive, users[0].Status)
	assert.Equal(t, 2, users[0].Line)
	assert.Equal(t, "Ana", users[0].Fields["first_name"])
	assert.Equal(t, StatusInactive, users[1].Status)
}

func TestNormalizeTerminations(t *testing.T) {
	table, err := parser.Parse([]byte("Work Email,Employment Status\nA@X.io, Terminated \n"))
	require.NoError(t, err)

	recs := NormalizeTerminations(table, "Work Email", "Employment Status", false)
	require.Len(t, recs, 1)
	assert.Equal(t, "a@x.io", recs[0].ID)
	assert.Equal(t, "Terminated", recs[0].Status)

	recs = NormalizeTerminations(table, "Work Email", "", false)
	assert.Empty(t, recs[0].Status)
}
