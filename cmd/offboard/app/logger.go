package app

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"offboard/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
//
// Warnings about conflicting or invalid settings go to warnings.
func NewLogger(config *Config, w io.Writer, warnings io.Writer) zerolog.Logger {
	level := determineLogLevel(config, warnings)

	logConfig := &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "trace",
		Writer:    w,
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(config *Config, warnings io.Writer) string {
	if config.LogLevel != "" {
		if !logging.ValidLevel(config.LogLevel) {
			fmt.Fprintf(warnings, "Warning: invalid log level %q, using %q\n", config.LogLevel, "info")
			return "info"
		}
		return config.LogLevel
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintf(warnings, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}

	if config.EnvLogLevel != "" && logging.ValidLevel(config.EnvLogLevel) {
		return config.EnvLogLevel
	}

	return "info"
}
