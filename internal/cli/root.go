/*
PURPOSE:
  Defines the root Cobra command for the sabre-bench CLI.
  Handles global flags, configuration loading and logging setup.

REQUIREMENTS:
  User-specified:
  - One binary for the routing benchmarks and the calibration collector.
  - Support global flags like --config.

  Implementation-discovered:
  - Config is loaded once in PersistentPreRunE so every subcommand sees the
    same file + environment + flag result.
  - The provider client logs through logrus; its level follows --log-level.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/sabre-bench/main.go
  - Calls: Child commands (bench, calibration, devices)
  - Modifies: the package-level cfg, read by subcommands.

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root only prepares cfg.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init() and applyGlobalFlags().

RELATED FILES:
  - cmd/sabre-bench/main.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/daryltucker/sabre-bench/internal/config"
	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/daryltucker/sabre-bench/internal/provider"
	"github.com/spf13/cobra"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	logLevel  string
	logFormat string
	outputDir string
	seed      int64
	metrics   string

	// cfg is ready once PersistentPreRunE has run.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "sabre-bench",
		Short: "Qubit-routing benchmarks and device calibration snapshots",
		Long: heredoc.Doc(`
			Benchmarks a SABRE-style qubit-routing optimizer on Bernstein-Vazirani,
			QFT and quantum volume circuits, and collects calibration snapshots
			(T1, T2, readout and two-qubit gate errors) from quantum backends.

			Use 'bench --help' for the routing sweeps and 'calibration --help' for
			the collector.
		`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

// Execute executes the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext executes the root command; ctx cancels long sweeps.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./sabre_bench.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringVar(&logFormat, "log-format", "", "text or json (overrides config)")
	pf.StringVarP(&outputDir, "output-dir", "o", "", "directory for result and snapshot files")
	pf.Int64Var(&seed, "seed", 0, "random seed; 0 derives one from the clock")
	pf.StringVar(&metrics, "metrics-file", "", "write sweep metrics in Prometheus text format to this file")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyGlobalFlags(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := output.Configure(os.Stderr, loaded.LogLevel, loaded.LogFormat); err != nil {
		return err
	}
	if loaded.LogLevel != "" {
		if err := provider.SetLogLevel(loaded.LogLevel); err != nil {
			return err
		}
	}
	provider.SetLogOutput(os.Stderr)

	cfg = loaded
	return nil
}

func applyGlobalFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if flags.Changed("output-dir") {
		c.OutputDir = outputDir
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("metrics-file") {
		c.MetricsFile = metrics
	}
}
