package app

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/pipeline"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	path := writeFile(t, t.TempDir(), "offboard.yaml", "")

	config, err := LoadConfig(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "auto", config.LogFormat)

	cfg := pipelineConfig(v)
	want := pipeline.DefaultConfig()
	assert.Equal(t, want.RosterID, cfg.RosterID)
	assert.Equal(t, want.RosterStatus, cfg.RosterStatus)
	assert.Equal(t, want.RosterCritical, cfg.RosterCritical)
	assert.Equal(t, want.TerminationID, cfg.TerminationID)
	assert.Equal(t, want.TerminationStatus, cfg.TerminationStatus)
	assert.Equal(t, want.TerminatedValue, cfg.TerminatedValue)
	assert.Equal(t, want.ActiveValues, cfg.ActiveValues)
	assert.Equal(t, want.InactiveValues, cfg.InactiveValues)
	assert.Equal(t, want.OutputDir, cfg.OutputDir)
	assert.Equal(t, want.InactiveValue, cfg.InactiveValue)
	assert.Empty(t, cfg.OutputColumns)
	assert.Empty(t, cfg.TerminationCritical)
	assert.False(t, cfg.CaseSensitive)
}

func TestLoadConfig_File(t *testing.T) {
	v := viper.New()
	path := writeFile(t, t.TempDir(), "offboard.yaml", `
roster:
  id_column: id
  status_column: state
  critical_columns: [name]
terminations:
  id_column: id
  status_column: ""
status:
  active_values: [here]
  inactive_values: [gone]
match:
  case_sensitive: true
output:
  columns:
    - id
    - Work Email
  inactive_value: gone
`)

	_, err := LoadConfig(v, path)
	require.NoError(t, err)

	cfg := pipelineConfig(v)
	assert.Equal(t, "id", cfg.RosterID)
	assert.Equal(t, "state", cfg.RosterStatus)
	assert.Equal(t, []string{"name"}, cfg.RosterCritical)
	assert.Equal(t, "", cfg.TerminationStatus)
	assert.Equal(t, []string{"here"}, cfg.ActiveValues)
	assert.Equal(t, []string{"gone"}, cfg.InactiveValues)
	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, []string{"id", "Work Email"}, cfg.OutputColumns)
	assert.Equal(t, "gone", cfg.InactiveValue)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("OFFBOARD_ROSTER_PATH", "/data/roster.csv")
	t.Setenv("OFFBOARD_ROSTER_CRITICAL_COLUMNS", "first_name, Last Name")
	t.Setenv("OFFBOARD_MATCH_CASE_SENSITIVE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	v := viper.New()
	path := writeFile(t, t.TempDir(), "offboard.yaml", "roster:\n  path: /file/roster.csv\n")

	config, err := LoadConfig(v, path)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.EnvLogLevel)

	cfg := pipelineConfig(v)
	assert.Equal(t, "/data/roster.csv", cfg.RosterPath, "env overrides config file")
	assert.Equal(t, []string{"first_name", "Last Name"}, cfg.RosterCritical)
	assert.True(t, cfg.CaseSensitive)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(viper.New(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIOError(err))

	bad := writeFile(t, dir, "bad.yaml", "roster: [unclosed\n")
	_, err = LoadConfig(viper.New(), bad)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsIOError(err))
}

func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{LogLevel: "", LogFormat: "auto"}
	config.UpdateFromFlags(true, false, true, "", "json")

	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "json", config.LogFormat)
	assert.Empty(t, config.LogLevel)
}

func TestStringList_YAMLScalars(t *testing.T) {
	v := viper.New()
	path := writeFile(t, t.TempDir(), "offboard.yaml", "status:\n  active_values: [true, 1, active]\n")
	_, err := LoadConfig(v, path)
	require.NoError(t, err)

	assert.Equal(t, []string{"true", "1", "active"}, stringList(v, keyActiveValues))
}
