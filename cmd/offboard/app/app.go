// Package app provides the application context and dependency management
// for the offboard CLI: configuration, logging and command wiring live here
// so main stays a few lines long.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// App represents the offboard application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	config *Config
	flags  globalFlags
	viper  *viper.Viper
	logger *zerolog.Logger

	stdout io.Writer
	stderr io.Writer
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	verbose    bool
	quiet      bool
	noColor    bool
}

// Option configures an App.
type Option func(*App) error

// WithOutput redirects command output and logs, mainly for tests.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		a.stdout = stdout
		a.stderr = stderr
		return nil
	}
}

// WithViper uses v instead of a fresh viper instance.
func WithViper(v *viper.Viper) Option {
	return func(a *App) error {
		a.viper = v
		return nil
	}
}

// New creates a new App instance with the given version information.
// Configuration is loaded when a command runs, after flags are parsed.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		config: &Config{
			LogFormat: "auto",
			LogOutput: "stderr",
		},
		viper:  viper.New(),
		stdout: os.Stdout,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	logger := NewLogger(app.config, app.stderr, app.warnings())
	app.logger = &logger

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

func (a *App) warnings() io.Writer {
	if a.stderr != nil {
		return a.stderr
	}
	return os.Stderr
}
