package estimate

import (
	"math/rand"
	"testing"

	"github.com/daryltucker/sabre-bench/internal/circuit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast keeps the model but shrinks the synthetic work.
func fast() *Estimator {
	e := New()
	e.FillerRows, e.FillerInner, e.FillerCols = 4, 4, 2
	return e
}

func TestLargeBVEstimate(t *testing.T) {
	spec, err := circuit.LargeBVSpec(1000, 0.1, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Equal(t, 100, spec.InteractionGates())

	got := fast().Estimate(spec)
	assert.Equal(t, 66, got.Swaps)
	assert.Equal(t, 102, got.BaseDepth)
	assert.Equal(t, 300, got.Depth)
	assert.GreaterOrEqual(t, got.Elapsed.Nanoseconds(), int64(0))
}

func TestSwapsMonotoneInInteractions(t *testing.T) {
	e := New()
	prev := 0
	for c := 0; c <= 500; c++ {
		s := e.Swaps(c)
		assert.GreaterOrEqual(t, s, prev, "c=%d", c)
		prev = s
	}
	assert.Equal(t, 0, e.Swaps(1))
	assert.Equal(t, 1, e.Swaps(2))
	assert.Equal(t, 0, e.Swaps(-3))
}

func TestDepthNeverBelowBase(t *testing.T) {
	e := fast()
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 5, 50, 333} {
		for _, f := range []float64{0, 0.05, 0.5, 1} {
			spec, err := circuit.LargeBVSpec(n, f, rng)
			require.NoError(t, err)
			r := e.Estimate(spec)
			assert.GreaterOrEqual(t, r.Depth, spec.LogicalDepth())
			assert.Equal(t, spec.LogicalDepth()+3*r.Swaps, r.Depth)
		}
	}
}

func TestAvgDistanceScalesSwaps(t *testing.T) {
	e := New()
	e.AvgDistance = 3
	assert.Equal(t, 100, e.Swaps(100))
	e.AvgDistance = 0
	assert.Equal(t, 0, e.Swaps(100))
}

func TestMatmul(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{7, 8, 9, 10, 11, 12}
	out := []float64{99, 99, 99, 99}
	matmul(out, a, b, 2, 3, 2)
	assert.Equal(t, []float64{58, 64, 139, 154}, out)
}

func TestZeroIterationsSkipsWork(t *testing.T) {
	e := fast()
	e.MaxIterations = 0
	spec, err := circuit.NewBVSpec(3, "111")
	require.NoError(t, err)
	r := e.Estimate(spec)
	assert.Equal(t, 2, r.Swaps)
	assert.Equal(t, 5+6, r.Depth)
}
