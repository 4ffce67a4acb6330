/*
PURPOSE:
  Defines the 'calibration' subcommands: collect a snapshot of every device,
  or show one device.

REQUIREMENTS:
  User-specified:
  - Save the snapshot as <prefix>_YYYYmmdd_HHMMSS.json and print it.
  - Retired backends get simulated data instead of disappearing.

  Implementation-discovered:
  - --source simulator serves the built-in profiles, so the whole path can
    be exercised without credentials.
  - The substitute profile is checked before collecting, so a retired
    backend always gets an entry.
  - The Redis mirror is optional and a failure to publish does not lose the
    file that was already written.

ARCHITECTURE INTEGRATION:
  - Calls: internal/calibration (Collector), internal/store (RedisMirror)
  - Uses: internal/provider (Client) or internal/device (Simulator)

ERROR HANDLING:
  - Per-device failures are logged by the collector; the command only fails
    when listing backends, writing the file or publishing fails.

IMPLEMENTATION RULES:
  - Setup flags in init().

USAGE:
  sabre-bench calibration collect --source simulator
  sabre-bench calibration show ibm_kyiv

RELATED FILES:
  - internal/calibration/collector.go
  - internal/store/redis.go
*/

package cli

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/daryltucker/sabre-bench/internal/calibration"
	"github.com/daryltucker/sabre-bench/internal/config"
	"github.com/daryltucker/sabre-bench/internal/device"
	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/daryltucker/sabre-bench/internal/provider"
	"github.com/daryltucker/sabre-bench/internal/store"
	"github.com/spf13/cobra"
)

var calibrationCmd = &cobra.Command{
	Use:     "calibration",
	Aliases: []string{"cal"},
	Short:   "Collect device calibration snapshots",
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Snapshot T1, T2, readout and two-qubit gate errors of every backend",
	Example: heredoc.Doc(`
		# Every backend visible to the token in $QISKIT_IBM_TOKEN
		sabre-bench calibration collect

		# Built-in profiles, no network
		sabre-bench calibration collect --source simulator

		# Two backends, mirrored to Redis
		sabre-bench calibration collect --backends ibm_kyiv,ibm_sherbrooke --redis localhost:6379
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyCalibrationFlags(cmd)
		c, err := newCollector(cfg)
		if err != nil {
			return err
		}
		c.Out = cmd.OutOrStdout()

		snap, outcomes, err := c.Collect(cmd.Context())
		if err != nil {
			return err
		}
		logOutcomes(outcomes)

		noFile, _ := cmd.Flags().GetBool("no-file")
		if !noFile {
			path, err := calibration.WriteSnapshot(cfg.OutputDir, cfg.Calibration.FilePrefix, snap)
			if err != nil {
				return fmt.Errorf("failed to save snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nData saved to %s\n", path)
		}

		if cfg.Redis.Addr != "" {
			m, err := store.Dial(cmd.Context(), cfg.Redis)
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Publish(cmd.Context(), snap); err != nil {
				return err
			}
			output.Logger.Info("Snapshot mirrored", "addr", cfg.Redis.Addr, "key", m.LatestKey())
		}

		fmt.Fprintln(cmd.OutOrStdout())
		return calibration.EncodeSnapshot(cmd.OutOrStdout(), snap)
	},
}

var showCmd = &cobra.Command{
	Use:   "show DEVICE",
	Short: "Print one device's qubit and two-qubit gate calibration",
	Long: heredoc.Doc(`
		Reads one device live, or from a saved snapshot with --file, and prints
		its T1, T2 and readout error per qubit and the error of each two-qubit
		gate.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		applyCalibrationFlags(cmd)

		var d calibration.DeviceSnapshot
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			snap, err := calibration.ReadSnapshot(file)
			if err != nil {
				return err
			}
			var ok bool
			if d, ok = snap.Devices[name]; !ok {
				return fmt.Errorf("%s is not in %s", name, file)
			}
		} else {
			c, err := newCollector(cfg)
			if err != nil {
				return err
			}
			if d, _, err = c.Single(cmd.Context(), name); err != nil {
				return err
			}
		}
		calibration.WriteReport(cmd.OutOrStdout(), name, d)
		return nil
	},
}

func applyCalibrationFlags(cmd *cobra.Command) {
	c := &cfg.Calibration
	overrideString(cmd, "source", &c.Source)
	overrideString(cmd, "substitute", &c.SubstituteDevice)
	overrideString(cmd, "prefix", &c.FilePrefix)
	overrideString(cmd, "redis", &cfg.Redis.Addr)
	if cmd.Flags().Changed("backends") {
		c.Backends, _ = cmd.Flags().GetStringSlice("backends")
	}
	if cmd.Flags().Changed("gates") {
		c.TwoQubitGates, _ = cmd.Flags().GetStringSlice("gates")
	}
}

// newCollector builds a collector over the configured source.
func newCollector(cfg *config.Config) (*calibration.Collector, error) {
	var src calibration.Source
	switch strings.ToLower(cfg.Calibration.Source) {
	case "", "ibm":
		client, err := provider.Dial(dialOptions(cfg.Provider)...)
		if err != nil {
			return nil, err
		}
		src = client
	case "simulator":
		src = device.NewSimulator()
	default:
		return nil, fmt.Errorf("unknown calibration source %q", cfg.Calibration.Source)
	}
	fallback := device.NewSimulator()
	if _, err := fallback.Substitute(cfg.Calibration.SubstituteDevice); err != nil {
		return nil, fmt.Errorf("substitute device: %w", err)
	}
	return &calibration.Collector{
		Source:           src,
		Fallback:         fallback,
		SubstituteDevice: cfg.Calibration.SubstituteDevice,
		TwoQubitGates:    cfg.Calibration.TwoQubitGates,
		Backends:         cfg.Calibration.Backends,
	}, nil
}

func dialOptions(p config.ProviderConfig) []provider.DialOption {
	opts := []provider.DialOption{
		provider.WithToken(p.Token),
		provider.WithRetries(p.Retries, p.RetryDelay),
	}
	if p.APIURL != "" {
		opts = append(opts, provider.WithAPIURL(p.APIURL))
	}
	if p.Instance != "" {
		opts = append(opts, provider.WithInstance(p.Instance))
	}
	if p.Timeout > 0 {
		opts = append(opts, provider.WithTimeout(p.Timeout))
	}
	return opts
}

func logOutcomes(outcomes []calibration.Outcome) {
	counts := map[calibration.OutcomeStatus]int{}
	for _, o := range outcomes {
		counts[o.Status]++
		if o.Status == calibration.OutcomeDegraded {
			output.Logger.Warn("Some metrics unavailable", "device", o.Device)
		}
	}
	output.Logger.Info("Collection summary",
		"ok", counts[calibration.OutcomeOK],
		"degraded", counts[calibration.OutcomeDegraded],
		"substituted", counts[calibration.OutcomeSubstituted],
		"skipped", counts[calibration.OutcomeSkipped],
		"failed", counts[calibration.OutcomeFailed])
}

func init() {
	rootCmd.AddCommand(calibrationCmd)
	calibrationCmd.AddCommand(collectCmd, showCmd)

	for _, c := range []*cobra.Command{collectCmd, showCmd} {
		c.Flags().String("source", "", "ibm (remote provider) or simulator (built-in profiles)")
		c.Flags().String("substitute", "", "profile whose data stands in for retired backends")
		c.Flags().StringSlice("gates", nil, "two-qubit gate names to collect (default cx,ecr,cz)")
	}
	collectCmd.Flags().StringSlice("backends", nil, "only these backends")
	collectCmd.Flags().String("prefix", "", "snapshot file name prefix")
	collectCmd.Flags().Bool("no-file", false, "do not write the snapshot file")
	collectCmd.Flags().String("redis", "", "mirror the snapshot to this Redis address")
	showCmd.Flags().String("file", "", "read the device from a saved snapshot instead")
}
