/*
PURPOSE:
  Defines the 'bench' subcommands, one per routing sweep.

REQUIREMENTS:
  User-specified:
  - Run the BV, large-BV, QFT and QV sweeps.
  - Flags override the matching config settings for one run.

  Implementation-discovered:
  - Only flags the user actually set override config (Flags().Changed).
  - A sweep interrupted with Ctrl-C still writes what it gathered and then
    returns the cancellation error.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine (RunBV, RunBVLarge, RunQFT, RunQV)
  - Uses: cfg prepared by root.go

ERROR HANDLING:
  - Returns setup errors (bad coupling spec, unwritable output).
  - Per-circuit failures are logged by the engine and counted as skipped.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Override -> Engine.Run -> report.

USAGE:
  sabre-bench bench qv --qubits 10,20 --depths 10 --trials 4

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when adding new sweep settings.
*/

package cli

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/daryltucker/sabre-bench/internal/engine"
	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a qubit-routing benchmark sweep",
	Long: heredoc.Doc(`
		Runs one routing sweep. Each circuit is routed onto the coupling map and
		the SWAP count, routing time, depth and size before and after routing are
		recorded, then per-configuration averages are printed.

		Coupling maps are either a built-in device profile (see 'devices list')
		or a generator: line:N, ring:N, grid:RxC, strided:N:K.
	`),
}

var benchBVCmd = &cobra.Command{
	Use:   "bv",
	Short: "Bernstein-Vazirani circuits with random hidden strings",
	Example: heredoc.Doc(`
		sabre-bench bench bv
		sabre-bench bench bv --qubits 5,10 --circuits 2 --coupling grid:4x4 -f results.jsonl
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfg.BV
		overrideInts(cmd, "qubits", &c.Qubits)
		overrideInt(cmd, "circuits", &c.CircuitsPerSize)
		overrideString(cmd, "coupling", &c.Coupling)
		overrideString(cmd, "file", &c.OutputFile)
		overrideString(cmd, "format", &c.Format)
		return runSweep(cmd, (*engine.Engine).RunBV)
	},
}

var benchBVLargeCmd = &cobra.Command{
	Use:   "bv-large",
	Short: "Small BV circuits routed, large ones estimated",
	Long: heredoc.Doc(`
		Routes the small sizes for real and, for sizes too large to route, reports
		an estimated SWAP count and depth from the interaction count and an
		assumed average qubit distance.
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfg.BVLarge
		overrideInts(cmd, "qubits", &c.LargeQubits)
		overrideString(cmd, "coupling", &c.SmallCoupling)
		overrideString(cmd, "file", &c.OutputFile)
		overrideString(cmd, "format", &c.Format)
		return runSweep(cmd, (*engine.Engine).RunBVLarge)
	},
}

var benchQFTCmd = &cobra.Command{
	Use:   "qft",
	Short: "Quantum Fourier transform for every width in a range",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfg.QFT
		overrideInt(cmd, "min", &c.MinQubits)
		overrideInt(cmd, "max", &c.MaxQubits)
		overrideString(cmd, "coupling", &c.Coupling)
		overrideString(cmd, "file", &c.OutputFile)
		overrideString(cmd, "format", &c.Format)
		return runSweep(cmd, (*engine.Engine).RunQFT)
	},
}

var benchQVCmd = &cobra.Command{
	Use:   "qv",
	Short: "Seeded quantum volume circuits, best of N routing trials",
	Example: heredoc.Doc(`
		sabre-bench bench qv --qubits 10,20 --depths 10,20 --circuits 3 --trials 4
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfg.QV
		overrideInts(cmd, "qubits", &c.Qubits)
		overrideInts(cmd, "depths", &c.Depths)
		overrideInt(cmd, "circuits", &c.CircuitsPerConfig)
		overrideInt(cmd, "trials", &c.Trials)
		overrideString(cmd, "coupling", &c.Coupling)
		overrideString(cmd, "file", &c.OutputFile)
		overrideString(cmd, "format", &c.Format)
		return runSweep(cmd, (*engine.Engine).RunQV)
	},
}

func runSweep(cmd *cobra.Command, run func(*engine.Engine, context.Context) (*engine.Report, error)) error {
	overrideString(cmd, "layout", &cfg.Optimizer.Layout)
	if err := cfg.Validate(); err != nil {
		return err
	}
	e := engine.New(cfg)
	e.Out = cmd.OutOrStdout()

	rep, err := run(e, cmd.Context())
	if rep != nil {
		output.Logger.Info("Sweep finished",
			"benchmark", rep.Benchmark,
			"run_id", rep.RunID,
			"records", len(rep.Records),
			"skipped", rep.Skipped,
			"output", rep.OutputPath,
			"seed", e.Seed())
	}
	return err
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			*dst = v
		}
	}
}

func overrideInts(cmd *cobra.Command, name string, dst *[]int) {
	if cmd.Flags().Changed(name) {
		if v, err := cmd.Flags().GetIntSlice(name); err == nil {
			*dst = v
		}
	}
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.AddCommand(benchBVCmd, benchBVLargeCmd, benchQFTCmd, benchQVCmd)

	for _, c := range []*cobra.Command{benchBVCmd, benchBVLargeCmd, benchQFTCmd, benchQVCmd} {
		c.Flags().String("coupling", "", "coupling map: device profile or line:N, ring:N, grid:RxC, strided:N:K")
		c.Flags().StringP("file", "f", "", "result file, relative to --output-dir (.txt, .jsonl, .csv, optionally .zst)")
		c.Flags().String("format", "", "text, jsonl or csv (default: from the file extension)")
		c.Flags().String("layout", "", "initial layout: sabre, random or trivial")
	}

	benchBVCmd.Flags().IntSlice("qubits", nil, "qubit counts to sweep")
	benchBVCmd.Flags().Int("circuits", 0, "circuits per qubit count")

	benchBVLargeCmd.Flags().IntSlice("qubits", nil, "qubit counts to estimate")

	benchQFTCmd.Flags().Int("min", 0, "smallest width")
	benchQFTCmd.Flags().Int("max", 0, "largest width")

	benchQVCmd.Flags().IntSlice("qubits", nil, "qubit counts to sweep")
	benchQVCmd.Flags().IntSlice("depths", nil, "circuit depths to sweep")
	benchQVCmd.Flags().Int("circuits", 0, "circuits per (qubits, depth)")
	benchQVCmd.Flags().Int("trials", 0, "routing trials per circuit; the fewest SWAPs wins")
}
