/*
PURPOSE:
  Collects a calibration snapshot (coherence times, readout and two-qubit
  gate errors, queue state) from every reachable device.

REQUIREMENTS:
  User-specified:
  - One entry per device: operational, pending_jobs, per-qubit T1/T2/
    readout_error/frequency, two-qubit gate error_rate/gate_length,
    last_update.
  - Retired devices still get an entry, filled from a simulated profile and
    marked non-operational with an empty queue.
  - Missing metrics are "N/A", never zero.

  Implementation-discovered:
  - Each device gets an Outcome so callers can tell substituted, degraded,
    skipped and failed entries apart without parsing logs.
  - A device with no published properties is skipped, not failed.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (calibration collect, calibration show)
  - Uses: internal/provider (Client), internal/device (Simulator) through the
    Source and Substituter interfaces

ERROR HANDLING:
  - Only a failure to list backends aborts Collect.
  - Per-device errors are logged and recorded as Failed; collection goes on.

USAGE:
  c := &calibration.Collector{Source: client, Fallback: device.NewSimulator()}
  snap, outcomes, err := c.Collect(ctx)

RELATED FILES:
  - internal/calibration/snapshot.go
  - internal/store/redis.go
*/

package calibration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/daryltucker/sabre-bench/internal/provider"
)

// DefaultTwoQubitGates are the entangling gate names collected when none are configured.
var DefaultTwoQubitGates = []string{"cx", "ecr", "cz"}

// ErrNoProperties is returned by Single for a device that publishes no calibration.
var ErrNoProperties = errors.New("calibration: no properties available")

// Source reads live device state. Both provider.Client and device.Simulator satisfy it.
type Source interface {
	Backends(ctx context.Context) ([]string, error)
	Status(ctx context.Context, name string) (provider.Status, error)
	Configuration(ctx context.Context, name string) (provider.Configuration, error)
	Properties(ctx context.Context, name string) (*provider.Properties, error)
}

// Substituter supplies stand-in calibration for retired devices.
type Substituter interface {
	Substitute(name string) (*provider.Properties, error)
}

// OutcomeStatus classifies how a device's entry was produced.
type OutcomeStatus int

const (
	OutcomeOK OutcomeStatus = iota
	// OutcomeDegraded entries have at least one N/A metric.
	OutcomeDegraded
	// OutcomeSubstituted entries came from the fallback profile.
	OutcomeSubstituted
	// OutcomeSkipped devices published no properties and have no entry.
	OutcomeSkipped
	// OutcomeFailed devices errored and have no entry.
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeSubstituted:
		return "substituted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the per-device result of a collection.
type Outcome struct {
	Device string
	Status OutcomeStatus
	Err    error
}

// Collector gathers calibration snapshots.
type Collector struct {
	Source Source
	// Fallback fills in retired devices. Nil disables substitution.
	Fallback         Substituter
	SubstituteDevice string
	// TwoQubitGates defaults to DefaultTwoQubitGates.
	TwoQubitGates []string
	// Backends restricts collection to these names. Empty means all.
	Backends []string
	// Out receives progress lines. Nil discards them.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *Collector) printf(format string, args ...any) {
	if c.Out != nil {
		fmt.Fprintf(c.Out, format, args...)
	}
}

func (c *Collector) gates() []string {
	if len(c.TwoQubitGates) > 0 {
		return c.TwoQubitGates
	}
	return DefaultTwoQubitGates
}

// Collect builds a snapshot of every selected backend.
func (c *Collector) Collect(ctx context.Context) (Snapshot, []Outcome, error) {
	names, err := c.Source.Backends(ctx)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("calibration: listing backends: %w", err)
	}
	if len(c.Backends) > 0 {
		names = slices.DeleteFunc(slices.Clone(names), func(n string) bool { return !slices.Contains(c.Backends, n) })
	}

	snap := Snapshot{CollectedAt: c.now(), Devices: make(map[string]DeviceSnapshot, len(names))}
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return snap, outcomes, err
		}
		c.printf("\nProcessing %s...\n", name)
		d, out := c.device(ctx, name, snap.CollectedAt)
		outcomes = append(outcomes, out)

		switch out.Status {
		case OutcomeSkipped:
			c.printf("Skipping %s: No properties available\n", name)
			output.Logger.Warn("No properties available", "device", name)
			continue
		case OutcomeFailed:
			c.printf("Error processing %s: %v\n", name, out.Err)
			output.Logger.Error("Failed to collect calibration", "device", name, "error", out.Err)
			continue
		case OutcomeSubstituted:
			c.printf("Using %s data for retired backend %s\n", c.SubstituteDevice, name)
			output.Logger.Warn("Backend retired, using substitute", "device", name, "substitute", c.SubstituteDevice)
		}
		snap.Devices[name] = d
	}
	output.Logger.Info("Calibration collected", "devices", len(snap.Devices), "backends", len(names))
	return snap, outcomes, nil
}

// Single collects one device. Skipped and failed devices are returned as errors.
func (c *Collector) Single(ctx context.Context, name string) (DeviceSnapshot, Outcome, error) {
	d, out := c.device(ctx, name, c.now())
	switch out.Status {
	case OutcomeSkipped:
		return DeviceSnapshot{}, out, fmt.Errorf("%w: %s", ErrNoProperties, name)
	case OutcomeFailed:
		return DeviceSnapshot{}, out, out.Err
	}
	return d, out, nil
}

func (c *Collector) device(ctx context.Context, name string, at time.Time) (DeviceSnapshot, Outcome) {
	out := Outcome{Device: name}

	status, err := c.Source.Status(ctx, name)
	if err != nil {
		return c.retiredOrFailed(name, at, err)
	}
	props, err := c.Source.Properties(ctx, name)
	if err != nil {
		return c.retiredOrFailed(name, at, err)
	}
	if props == nil {
		out.Status = OutcomeSkipped
		return DeviceSnapshot{}, out
	}

	n := props.NumQubits()
	if cfg, err := c.Source.Configuration(ctx, name); err == nil && cfg.NumQubits > n {
		n = cfg.NumQubits
	} else if err != nil {
		output.Logger.Debug("No configuration, using property count", "device", name, "error", err)
	}

	d := c.fromProperties(props, n, at)
	d.Operational = status.Operational
	d.PendingJobs = status.PendingJobs
	d.Source = SourceLive
	if d.degraded() {
		out.Status = OutcomeDegraded
	}
	return d, out
}

func (c *Collector) retiredOrFailed(name string, at time.Time, err error) (DeviceSnapshot, Outcome) {
	if !provider.IsRetired(err) || c.Fallback == nil {
		return DeviceSnapshot{}, Outcome{Device: name, Status: OutcomeFailed, Err: err}
	}
	props, serr := c.Fallback.Substitute(c.SubstituteDevice)
	if serr != nil {
		return DeviceSnapshot{}, Outcome{Device: name, Status: OutcomeFailed, Err: errors.Join(err, serr)}
	}
	d := c.fromProperties(props, props.NumQubits(), at)
	d.Operational = false
	d.PendingJobs = 0
	d.Source = SubstitutePrefix + c.SubstituteDevice
	return d, Outcome{Device: name, Status: OutcomeSubstituted, Err: err}
}

func (c *Collector) fromProperties(props *provider.Properties, n int, at time.Time) DeviceSnapshot {
	d := DeviceSnapshot{
		Qubits:        make([]QubitMetrics, 0, n),
		TwoQubitGates: []GateMetrics{},
		CollectedAt:   at,
	}
	for q := 0; q < n; q++ {
		d.Qubits = append(d.Qubits, QubitMetrics{
			Qubit:        q,
			T1:           FromResult(props.T1(q)),
			T2:           FromResult(props.T2(q)),
			ReadoutError: FromResult(props.ReadoutError(q)),
			Frequency:    FromResult(props.Frequency(q)),
		})
	}
	for _, g := range props.GatesNamed(c.gates()...) {
		d.TwoQubitGates = append(d.TwoQubitGates, GateMetrics{
			Gate:       g.Gate,
			Qubits:     slices.Clone(g.Qubits),
			ErrorRate:  FromResult(props.GateError(g.Gate, g.Qubits)),
			GateLength: FromResult(props.GateLength(g.Gate, g.Qubits)),
		})
	}
	if t, err := props.LastUpdate(); err == nil {
		t = t.UTC()
		d.LastUpdate = &t
	}
	return d
}

func (d DeviceSnapshot) degraded() bool {
	for _, q := range d.Qubits {
		if !q.T1.OK() || !q.T2.OK() || !q.ReadoutError.OK() || !q.Frequency.OK() {
			return true
		}
	}
	for _, g := range d.TwoQubitGates {
		if !g.ErrorRate.OK() || !g.GateLength.OK() {
			return true
		}
	}
	return false
}

// WriteReport prints one device the way a quick terminal check wants it.
func WriteReport(w io.Writer, name string, d DeviceSnapshot) {
	fmt.Fprintf(w, "Backend: %s\n", name)
	fmt.Fprintf(w, "Qubits: %d\n", len(d.Qubits))
	if d.Substituted() {
		fmt.Fprintf(w, "Source: %s\n", d.Source)
	}
	fmt.Fprintf(w, "Operational: %t, Pending jobs: %d\n", d.Operational, d.PendingJobs)

	fmt.Fprintln(w, "\nQubit Properties:")
	for _, q := range d.Qubits {
		fmt.Fprintf(w, "Qubit %d:\n", q.Qubit)
		fmt.Fprintf(w, "  T1 = %s s\n", q.T1.Format("%.2e"))
		fmt.Fprintf(w, "  T2 = %s s\n", q.T2.Format("%.2e"))
		fmt.Fprintf(w, "  Readout error = %s\n", q.ReadoutError.Format("%.4f"))
	}

	fmt.Fprintln(w, "\nTwo-Qubit Gate Errors:")
	for _, g := range d.TwoQubitGates {
		fmt.Fprintf(w, "%s %v: %s\n", g.Gate, g.Qubits, g.ErrorRate.Format("%.4f"))
	}
}
