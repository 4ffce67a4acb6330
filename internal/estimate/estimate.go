// Package estimate predicts routing cost for circuits too large to build and route.
//
// The model is deliberately crude: every interaction gate is assumed to need its
// operands moved AvgDistance couplings, and each SWAP moves one operand one step
// while adding three layers of depth. The reported time comes from a fixed amount
// of synthetic dense arithmetic proportional to the circuit width, so it tracks
// circuit size but not routing difficulty.
package estimate

import (
	"math/rand"
	"time"

	"github.com/daryltucker/sabre-bench/internal/circuit"
)

const (
	DefaultAvgDistance   = 2.0
	DefaultMaxIterations = 1000
	DefaultFillerRows    = 1000
	DefaultFillerInner   = 1000
	DefaultFillerCols    = 10
)

// Estimator holds the cost-model parameters. The zero value is not usable; start from New.
type Estimator struct {
	AvgDistance float64
	// MaxIterations caps the number of synthetic products; min(MaxIterations, n) are run.
	MaxIterations int
	FillerRows    int
	FillerInner   int
	FillerCols    int
}

// Result is the estimated routing outcome of one circuit.
type Result struct {
	Swaps     int
	BaseDepth int
	Depth     int
	Elapsed   time.Duration
}

// New returns an Estimator with the default model.
func New() *Estimator {
	return &Estimator{
		AvgDistance:   DefaultAvgDistance,
		MaxIterations: DefaultMaxIterations,
		FillerRows:    DefaultFillerRows,
		FillerInner:   DefaultFillerInner,
		FillerCols:    DefaultFillerCols,
	}
}

// Swaps is floor(interactions * AvgDistance / 3).
func (e *Estimator) Swaps(interactions int) int {
	if interactions <= 0 || e.AvgDistance <= 0 {
		return 0
	}
	return int(float64(interactions) * e.AvgDistance / 3)
}

// Estimate never fails; every call does the synthetic work and returns all three figures.
func (e *Estimator) Estimate(spec circuit.Spec) Result {
	start := time.Now()
	swaps := e.Swaps(spec.InteractionGates())
	e.burn(spec.Qubits())
	elapsed := time.Since(start)

	base := spec.LogicalDepth()
	return Result{
		Swaps:     swaps,
		BaseDepth: base,
		Depth:     base + 3*swaps,
		Elapsed:   elapsed,
	}
}

// burn runs min(MaxIterations, n) products of fresh random
// FillerRows x FillerInner and FillerInner x FillerCols matrices.
func (e *Estimator) burn(n int) {
	iters := min(e.MaxIterations, n)
	rows, inner, cols := e.FillerRows, e.FillerInner, e.FillerCols
	if iters <= 0 || rows <= 0 || inner <= 0 || cols <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(int64(n)))
	a := make([]float64, rows*inner)
	b := make([]float64, inner*cols)
	out := make([]float64, rows*cols)
	for it := 0; it < iters; it++ {
		for i := range a {
			a[i] = rng.Float64()
		}
		for i := range b {
			b[i] = rng.Float64()
		}
		matmul(out, a, b, rows, inner, cols)
	}
}

// matmul writes a (r x k) times b (k x c) into out (r x c), all row-major.
func matmul(out, a, b []float64, r, k, c int) {
	clear(out)
	for i := 0; i < r; i++ {
		row := out[i*c : (i+1)*c]
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			bp := b[p*c : (p+1)*c]
			for j := range row {
				row[j] += av * bp[j]
			}
		}
	}
}
