package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "offboard/pkg/errors"
)

const (
	testRoster = "first_name,last_name,email,active,group\n" +
		"Ana,Diaz,ana@example.com,TRUE,eng\n" +
		"Bo,Li,bo@example.com,TRUE,ops\n" +
		"Cy,Ng,cy@example.com,FALSE,ops\n"
	testTerminations = "Work Email,Employment Status\n" +
		"ANA@example.com,Terminated\n" +
		"cy@example.com,Terminated\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type testRun struct {
	dir    string
	config string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestRun prepares a workspace with both exports and a config file.
func newTestRun(t *testing.T, configYAML string) *testRun {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "roster.csv", testRoster)
	writeFile(t, dir, "terms.csv", testTerminations)
	return &testRun{
		dir:    dir,
		config: writeFile(t, dir, "offboard.yaml", configYAML),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

func (r *testRun) path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *testRun) execute(t *testing.T, args ...string) error {
	t.Helper()
	application, err := New("1.2.3", "abc123", "2024-03-07", WithOutput(r.stdout, r.stderr))
	require.NoError(t, err)
	return application.Execute(context.Background(), append([]string{"--config", r.config}, args...))
}

func TestExecute_Run(t *testing.T) {
	r := newTestRun(t, "output:\n  columns: [email, first_name, active]\n")

	err := r.execute(t, "run",
		"--roster", r.path("roster.csv"),
		"--terminations", r.path("terms.csv"),
		"--output-dir", r.path("out"),
		"--run-date", "20240307",
		"--log-format", "json")
	require.NoError(t, err)

	data, err := os.ReadFile(r.path("out/20240307_users_to_inactivate.csv"))
	require.NoError(t, err)
	assert.Equal(t, "email,first_name,active\nana@example.com,Ana,FALSE\n", string(data))

	assert.Contains(t, r.stdout.String(), "1 users to inactivate written to")
	assert.Contains(t, r.stderr.String(), "Reconciliation complete")
}

func TestExecute_RunPathsFromConfig(t *testing.T) {
	dir := t.TempDir()
	roster := writeFile(t, dir, "roster.csv", testRoster)
	terms := writeFile(t, dir, "terms.csv", testTerminations)
	r := &testRun{
		dir: dir,
		config: writeFile(t, dir, "offboard.yaml",
			"roster:\n  path: "+roster+"\n"+
				"terminations:\n  path: "+terms+"\n"+
				"output:\n  dir: "+filepath.Join(dir, "from-config")+"\n"),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}

	require.NoError(t, r.execute(t, "run", "--run-date", "20240307", "-q"))
	_, err := os.Stat(r.path("from-config/20240307_users_to_inactivate.csv"))
	require.NoError(t, err)

	require.NoError(t, r.execute(t, "run", "--run-date", "20240307", "--output-dir", r.path("from-flag"), "-q"))
	_, err = os.Stat(r.path("from-flag/20240307_users_to_inactivate.csv"))
	assert.NoError(t, err, "flag overrides config file")
}

func TestExecute_RunDryRun(t *testing.T) {
	r := newTestRun(t, "")

	err := r.execute(t, "run",
		"--roster", r.path("roster.csv"),
		"--terminations", r.path("terms.csv"),
		"--output", r.path("list.csv"),
		"--summary", r.path("summary.json"),
		"--dry-run", "-q")
	require.NoError(t, err)

	_, statErr := os.Stat(r.path("list.csv"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(r.path("summary.json"))
	assert.NoError(t, statErr)
	assert.Contains(t, r.stdout.String(), "dry run")
}

func TestExecute_RunSchemaError(t *testing.T) {
	r := newTestRun(t, "roster:\n  status_column: status\n")

	err := r.execute(t, "run",
		"--roster", r.path("roster.csv"),
		"--terminations", r.path("terms.csv"),
		"--output-dir", r.path("out"), "-q")
	require.Error(t, err)
	assert.Equal(t, 2, pkgerrors.ExitCode(err))
	assert.Contains(t, err.Error(), `"status"`)

	_, statErr := os.Stat(r.path("out"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecute_RunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no roster", []string{"run", "--terminations", "t.csv"}, "no roster given"},
		{"no terminations", []string{"run", "--roster", "r.csv"}, "no terminations given"},
		{"bad run date", []string{"run", "--roster", "r.csv", "--terminations", "t.csv", "--run-date", "2024-03-07"}, "invalid --run-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRun(t, "")
			err := r.execute(t, append(tt.args, "-q")...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 1, pkgerrors.ExitCode(err))
		})
	}
}

func TestExecute_Check(t *testing.T) {
	r := newTestRun(t, "")

	err := r.execute(t, "check", "--roster", r.path("roster.csv"), "--terminations", r.path("terms.csv"), "-q")
	require.NoError(t, err)
	assert.Equal(t, "ok: roster 3 rows, terminations 2 rows\n", r.stdout.String())
}

func TestExecute_Version(t *testing.T) {
	r := newTestRun(t, "")

	require.NoError(t, r.execute(t, "version"))
	assert.Contains(t, r.stdout.String(), "offboard version 1.2.3")
	assert.Contains(t, r.stdout.String(), "commit: abc123")
}

func TestExecute_MissingConfigFile(t *testing.T) {
	application, err := New("dev", "", "", WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	err = application.Execute(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "version"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIOError(err))
}

func TestNew_WithViper(t *testing.T) {
	v := viper.New()
	application, err := New("dev", "", "", WithViper(v))
	require.NoError(t, err)
	assert.Same(t, v, application.viper)
	assert.NotNil(t, application.Logger())
	assert.Equal(t, "dev", application.Version())
}
