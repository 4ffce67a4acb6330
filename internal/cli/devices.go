/*
PURPOSE:
  Defines the 'devices' subcommands for the built-in device profiles.
  Helps pick a coupling map and inspect the simulated calibration.

REQUIREMENTS:
  User-specified:
  - List the devices usable as coupling maps.

  Implementation-discovered:
  - Exporting the embedded TOML lets users copy a profile as the starting
    point for a new device.

ARCHITECTURE INTEGRATION:
  - Calls: internal/device (Names, Lookup, Profiles)

ERROR HANDLING:
  - A profile that fails to write is logged and the rest are still exported.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  sabre-bench devices list
  sabre-bench devices export --dir ./profiles

RELATED FILES:
  - internal/device/device.go
*/

package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/daryltucker/sabre-bench/internal/device"
	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Inspect the built-in device profiles",
}

var listDevicesCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in devices and their coupling maps",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tQUBITS\tEDGES\tAVG DEGREE\tCALIBRATION\tRETIRED")
		for _, name := range device.Names() {
			d, err := device.Lookup(name)
			if err != nil {
				return err
			}
			m, err := d.CouplingMap()
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%t\t%t\n",
				name, d.NumQubits, len(m.Edges()), m.AverageDegree(), d.HasCalibration(), d.Retired)
		}
		return tw.Flush()
	},
}

var exportDevicesCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the embedded device profiles as TOML files",
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir, _ := cmd.Flags().GetString("dir")
		output.Logger.Info("Exporting device profiles...", "target", targetDir)

		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
		}

		profiles := device.Profiles()
		entries, err := fs.ReadDir(profiles, ".")
		if err != nil {
			return fmt.Errorf("failed to read embedded profiles: %w", err)
		}

		count := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			content, err := fs.ReadFile(profiles, entry.Name())
			if err != nil {
				output.Logger.Error("Failed to read embedded file", "file", entry.Name(), "error", err)
				continue
			}
			targetPath := filepath.Join(targetDir, entry.Name())
			if err := os.WriteFile(targetPath, content, 0o644); err != nil {
				output.Logger.Error("Failed to write to target", "path", targetPath, "error", err)
				continue
			}
			output.Logger.Info("Exported profile", "name", entry.Name())
			count++
		}

		output.Logger.Info("Export complete", "total_files", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(listDevicesCmd, exportDevicesCmd)
	exportDevicesCmd.Flags().String("dir", "profiles", "target directory")
}
