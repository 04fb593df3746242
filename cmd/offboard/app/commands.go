package app

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"offboard/pkg/pipeline"
	"offboard/pkg/report"
)

// inputBindings maps the input flags shared by run and check to config keys.
var inputBindings = map[string]string{
	"roster":       keyRosterPath,
	"terminations": keyTerminationsPath,
}

type runOptions struct {
	output  string
	runDate string
	summary string
	dryRun  bool
}

func (a *App) newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Write the list of users to inactivate",
		Long: `Run loads and validates both exports, selects every terminated user that
is still active in the roster and writes them, in roster order, to
<output-dir>/<YYYYMMDD>_users_to_inactivate.csv.`,
		Example: `  offboard run --roster "NinjoEmployees export.csv" --terminations terminations.csv
  offboard run --roster roster.csv --terminations terms.csv --run-date 20240307 --summary run.yaml
  offboard run --roster roster.csv --terminations terms.csv --dry-run -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.commandConfig(cmd.Flags(), map[string]string{"output-dir": keyOutputDir})
			if err != nil {
				return err
			}
			cfg.OutputPath = opts.output
			cfg.SummaryPath = opts.summary
			cfg.DryRun = opts.dryRun
			if opts.runDate != "" {
				date, err := time.ParseInLocation(report.DateLayout, opts.runDate, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --run-date %q: want YYYYMMDD", opts.runDate)
				}
				cfg.RunDate = date
			}

			outcome, err := pipeline.New(cfg, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			n := len(outcome.Result.Candidates)
			if outcome.Written {
				fmt.Fprintf(cmd.OutOrStdout(), "%d users to inactivate written to %s\n", n, outcome.OutputPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d users to inactivate (dry run, %s not written)\n", n, outcome.OutputPath)
			}
			return nil
		},
	}

	addInputFlags(cmd.Flags())
	cmd.Flags().String("output-dir", "", "directory for the dated output file (default \".\")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "explicit output file, overrides --output-dir")
	cmd.Flags().StringVar(&opts.runDate, "run-date", "", "run date YYYYMMDD used in the output name (default today)")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "also write a run summary (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "reconcile and report without writing the output file")

	return cmd
}

func (a *App) newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load and validate both exports without reconciling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.commandConfig(cmd.Flags(), nil)
			if err != nil {
				return err
			}

			in, err := pipeline.New(cfg, a.logger).Check(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: roster %d rows, terminations %d rows\n",
				in.Roster.Table.Len(), in.Terminations.Table.Len())
			return nil
		},
	}

	addInputFlags(cmd.Flags())
	return cmd
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "offboard version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func addInputFlags(flags *pflag.FlagSet) {
	flags.String("roster", "", "roster export, one row per user (CSV)")
	flags.String("terminations", "", "terminations export (CSV)")
}

// commandConfig binds the command's flags over the loaded configuration
// and checks that both inputs are known.
func (a *App) commandConfig(flags *pflag.FlagSet, extra map[string]string) (pipeline.Config, error) {
	for _, bindings := range []map[string]string{inputBindings, extra} {
		for name, key := range bindings {
			if err := a.viper.BindPFlag(key, flags.Lookup(name)); err != nil {
				return pipeline.Config{}, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfg := pipelineConfig(a.viper)
	if cfg.RosterPath == "" {
		return cfg, fmt.Errorf("no roster given: use --roster or set %s", keyRosterPath)
	}
	if cfg.TerminationsPath == "" {
		return cfg, fmt.Errorf("no terminations given: use --terminations or set %s", keyTerminationsPath)
	}
	return cfg, nil
}
