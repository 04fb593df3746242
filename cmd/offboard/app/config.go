package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	pkgerrors "offboard/pkg/errors"
	"offboard/pkg/pipeline"
)

const (
	envPrefix  = "OFFBOARD"
	configName = ".offboard"
)

// Config keys.
const (
	keyRosterPath          = "roster.path"
	keyRosterID            = "roster.id_column"
	keyRosterStatus        = "roster.status_column"
	keyRosterCritical      = "roster.critical_columns"
	keyTerminationsPath    = "terminations.path"
	keyTerminationID       = "terminations.id_column"
	keyTerminationStatus   = "terminations.status_column"
	keyTerminatedValue     = "terminations.status_value"
	keyTerminationCritical = "terminations.critical_columns"
	keyActiveValues        = "status.active_values"
	keyInactiveValues      = "status.inactive_values"
	keyCaseSensitive       = "match.case_sensitive"
	keyOutputDir           = "output.dir"
	keyOutputColumns       = "output.columns"
	keyInactiveValue       = "output.inactive_value"
)

// Config holds the global settings of the CLI. Reconciliation settings
// stay in viper until a command builds its pipeline.Config.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (bound by the commands)
//  2. Environment variables (OFFBOARD_ROSTER_PATH for roster.path)
//  3. .env files
//  4. Config file (--config, else ./.offboard.yaml or ~/.offboard.yaml)
//  5. Defaults
//
// A config file that exists but cannot be read or parsed is an IOError, as
// is an explicit configFile that is missing.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			path := configFile
			if path == "" {
				path = v.ConfigFileUsed()
			}
			return nil, pkgerrors.WrapIO("read config", path, err)
		}
	}

	return &Config{
		NoColor:     os.Getenv("NO_COLOR") != "",
		ConfigFile:  v.ConfigFileUsed(),
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// UpdateFromFlags applies the parsed global flags on top of the loaded
// configuration. Empty strings leave the loaded values alone.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel, logFormat string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
}

func setDefaults(v *viper.Viper) {
	d := pipeline.DefaultConfig()
	v.SetDefault(keyRosterID, d.RosterID)
	v.SetDefault(keyRosterStatus, d.RosterStatus)
	v.SetDefault(keyRosterCritical, d.RosterCritical)
	v.SetDefault(keyTerminationID, d.TerminationID)
	v.SetDefault(keyTerminationStatus, d.TerminationStatus)
	v.SetDefault(keyTerminatedValue, d.TerminatedValue)
	v.SetDefault(keyActiveValues, d.ActiveValues)
	v.SetDefault(keyInactiveValues, d.InactiveValues)
	v.SetDefault(keyCaseSensitive, false)
	v.SetDefault(keyOutputDir, d.OutputDir)
	v.SetDefault(keyInactiveValue, d.InactiveValue)
}

// pipelineConfig builds the reconciliation settings from v. Command-only
// settings (explicit output path, run date, summary, dry run) are left to
// the caller.
func pipelineConfig(v *viper.Viper) pipeline.Config {
	return pipeline.Config{
		RosterPath:          v.GetString(keyRosterPath),
		TerminationsPath:    v.GetString(keyTerminationsPath),
		RosterID:            v.GetString(keyRosterID),
		RosterStatus:        v.GetString(keyRosterStatus),
		RosterCritical:      stringList(v, keyRosterCritical),
		TerminationID:       v.GetString(keyTerminationID),
		TerminationStatus:   v.GetString(keyTerminationStatus),
		TerminatedValue:     v.GetString(keyTerminatedValue),
		TerminationCritical: stringList(v, keyTerminationCritical),
		ActiveValues:        stringList(v, keyActiveValues),
		InactiveValues:      stringList(v, keyInactiveValues),
		CaseSensitive:       v.GetBool(keyCaseSensitive),
		OutputDir:           v.GetString(keyOutputDir),
		OutputColumns:       stringList(v, keyOutputColumns),
		InactiveValue:       v.GetString(keyInactiveValue),
	}
}

// stringList reads a list that may come from YAML, where unquoted true or 1
// decode as scalars, or from a comma-separated environment variable.
// Column names can contain spaces, so only commas separate entries.
func stringList(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	var raw []string
	switch value := v.Get(key).(type) {
	case string:
		raw = []string{value}
	case []string:
		raw = value
	case []any:
		for _, item := range value {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadEnvFiles loads environment variables from .env files. godotenv never
// overrides a variable that is already set, so .env.local goes first.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
