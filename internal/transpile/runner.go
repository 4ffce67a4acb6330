package transpile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daryltucker/sabre-bench/internal/circuit"
)

// Result is the best routed circuit out of a Run and what it cost.
type Result struct {
	Circuit   *circuit.Circuit
	SwapCount int
	Depth     int
	Size      int
	// Elapsed covers every trial, not only the kept one.
	Elapsed time.Duration
	// Seed is the seed of the kept trial.
	Seed int64
}

// Runner applies an Optimizer with best-of-N trials.
type Runner struct {
	Optimizer Optimizer
	// Seed is the base seed; trial i runs with Seed+i.
	Seed int64
}

// Run transpiles c trials times (at least once) and keeps the first result with
// the fewest swaps.
func (r *Runner) Run(ctx context.Context, c *circuit.Circuit, trials int) (Result, error) {
	if r.Optimizer == nil {
		return Result{}, errors.New("transpile: runner has no optimizer")
	}
	if c == nil {
		return Result{}, errors.New("transpile: nil circuit")
	}
	if trials < 1 {
		trials = 1
	}

	start := time.Now()
	var best Result
	found := false
	for i := 0; i < trials; i++ {
		seed := r.Seed + int64(i)
		out, err := r.Optimizer.Transpile(ctx, c, seed)
		if err != nil {
			return Result{}, fmt.Errorf("trial %d: %w", i+1, err)
		}
		swaps := out.Count(circuit.GateSwap)
		if !found || swaps < best.SwapCount {
			best = Result{Circuit: out, SwapCount: swaps, Seed: seed}
			found = true
		}
	}
	best.Elapsed = time.Since(start)
	best.Depth = best.Circuit.Depth()
	best.Size = best.Circuit.Size()
	return best, nil
}
