/*
PURPOSE:
  Core engine for the routing benchmarks. Holds the run configuration, the
  seeded random source, and the wiring from config to coupling maps,
  optimizers and the cost estimator.

REQUIREMENTS:
  User-specified:
  - BV, large-BV, QFT and QV sweeps over configured parameter lists.
  - One random source per run so a fixed --seed reproduces every hidden
    string, layout and trial seed.

  Implementation-discovered:
  - Coupling specs name either a generator (line:N, strided:N:K, ...) or a
    built-in device profile.
  - An external optimizer command replaces the built-in pipeline wholesale.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/circuit, internal/coupling, internal/device,
    internal/estimate, internal/transpile, internal/output

ERROR HANDLING:
  - Setup errors (bad coupling spec, unwritable output) are returned.
  - Per-circuit errors are logged and the circuit is skipped (see runner.go).

USAGE:
  e := engine.New(cfg)
  report, err := e.RunBV(ctx)

RELATED FILES:
  - internal/engine/runner.go
  - internal/config/config.go
*/

package engine

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/daryltucker/sabre-bench/internal/config"
	"github.com/daryltucker/sabre-bench/internal/coupling"
	"github.com/daryltucker/sabre-bench/internal/device"
	"github.com/daryltucker/sabre-bench/internal/estimate"
	"github.com/daryltucker/sabre-bench/internal/output"
	"github.com/daryltucker/sabre-bench/internal/transpile"
)

// Engine runs benchmark sweeps.
type Engine struct {
	Config    *config.Config
	Estimator *estimate.Estimator
	Metrics   *Metrics
	// Out receives progress and summary lines.
	Out io.Writer

	seed int64
	rng  *rand.Rand
}

// New creates a new Engine. A zero cfg.Seed is replaced by a clock-derived one.
func New(cfg *config.Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	est := estimate.New()
	est.AvgDistance = cfg.BVLarge.AvgDistance
	est.MaxIterations = cfg.BVLarge.MaxIterations
	est.FillerRows = cfg.BVLarge.Filler[0]
	est.FillerInner = cfg.BVLarge.Filler[1]
	est.FillerCols = cfg.BVLarge.Filler[2]

	return &Engine{
		Config:    cfg,
		Estimator: est,
		Metrics:   NewMetrics(),
		Out:       os.Stdout,
		seed:      seed,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Seed is the seed the run's random source started from.
func (e *Engine) Seed() int64 { return e.seed }

// CouplingMap resolves a coupling spec against generators and device profiles.
func CouplingMap(spec string) (*coupling.Map, error) {
	return coupling.Parse(spec, device.Resolve)
}

// target resolves the coupling map and builds the configured optimizer for it.
func (e *Engine) target(spec string) (*coupling.Map, transpile.Optimizer, error) {
	m, err := CouplingMap(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("coupling map %q: %w", spec, err)
	}

	oc := e.Config.Optimizer
	if len(oc.Command) > 0 {
		return m, &transpile.Command{Path: oc.Command[0], Args: oc.Command[1:], CouplingMap: spec}, nil
	}

	var layout transpile.Layout
	switch strings.ToLower(oc.Layout) {
	case "trivial":
		layout = transpile.TrivialLayout{}
	case "random":
		layout = transpile.RandomLayout{}
	case "", "sabre":
		layout = transpile.SabreLayout{Iterations: oc.LayoutIterations}
	default:
		return nil, nil, fmt.Errorf("unknown layout %q", oc.Layout)
	}
	return m, &transpile.Pipeline{Map: m, Layout: layout, Swap: &transpile.GreedySwap{}}, nil
}

// resolve places relative output names under OutputDir.
func (e *Engine) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.Config.OutputDir, name)
}

// openOutput opens the sweep's result file under OutputDir. An empty name disables it.
func (e *Engine) openOutput(name, format string) (output.RecordWriter, string, error) {
	if name == "" {
		return nil, "", nil
	}
	path := e.resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	w, err := output.NewRecordWriter(path, format)
	if err != nil {
		return nil, "", fmt.Errorf("failed to init writer at %s: %w", path, err)
	}
	return w, path, nil
}
