package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	pkgerrors "offboard/pkg/errors"
)

// Execute runs the offboard CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	a.flags = globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "offboard",
		Short:   "Find departed users that are still active",
		Version: a.version,
		Long: `Offboard reconciles an active-users roster export with a terminations
export and writes the list of users that must be moved to inactive status.

The output is <YYYYMMDD>_users_to_inactivate.csv: the roster rows of every
terminated user that is still active, with the status column set to the
inactive value. Any schema or data defect in either input fails the run and
nothing is written.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	if a.stdout != nil {
		rootCmd.SetOut(a.stdout)
	}
	if a.stderr != nil {
		rootCmd.SetErr(a.stderr)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file (default is ./.offboard.yaml or $HOME/.offboard.yaml)")
	flags.BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.flags.noColor, "no-color", false, "disable colored log output")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format: auto, json, console")

	rootCmd.SetVersionTemplate("offboard {{.Version}}\n")

	rootCmd.AddCommand(a.newRunCommand())
	rootCmd.AddCommand(a.newCheckCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs. It loads configuration
// now that --config is known and rebuilds the logger from the flags.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	config, err := LoadConfig(a.viper, a.flags.configFile)
	if err != nil {
		return err
	}
	config.UpdateFromFlags(a.flags.verbose, a.flags.quiet, a.flags.noColor, a.flags.logLevel, a.flags.logFormat)
	a.config = config

	logger := NewLogger(a.config, a.stderr, a.warnings())
	a.logger = &logger

	if a.config.ConfigFile != "" {
		a.logger.Debug().Str("file", a.config.ConfigFile).Msg("Using config file")
	}
	return nil
}

// ExitOnError prints err and exits with the status matching its kind:
// 2 schema, 3 validation, 4 I/O, 1 anything else.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("offboard: " + err.Error() + "\n")
		os.Exit(pkgerrors.ExitCode(err))
	}
}
