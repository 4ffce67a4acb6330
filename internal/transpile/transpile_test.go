package transpile

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"testing"

	"github.com/daryltucker/sabre-bench/internal/circuit"
	"github.com/daryltucker/sabre-bench/internal/coupling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertRouted checks every multi-qubit op, swaps included, sits on a coupled pair.
func assertRouted(t *testing.T, c *circuit.Circuit, m *coupling.Map) {
	t.Helper()
	for i, op := range c.Ops {
		if len(op.Qubits) == 2 && op.Name != circuit.GateBarrier {
			assert.True(t, m.Connected(op.Qubits[0], op.Qubits[1]), "op %d %s%v not coupled", i, op.Name, op.Qubits)
		}
	}
}

func TestGreedySwapOnLine(t *testing.T) {
	m, err := coupling.Line(3)
	require.NoError(t, err)
	bv, err := circuit.BernsteinVazirani(2, "11")
	require.NoError(t, err)

	out, final, err := (&GreedySwap{}).Route(bv, m, []int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count(circuit.GateSwap))
	assert.Equal(t, []int{0, 2, 1}, final)
	assertRouted(t, out, m)
	assert.Equal(t, bv.Size()+1, out.Size())
	assert.Equal(t, bv.Count(circuit.GateMeasure), out.Count(circuit.GateMeasure))
}

func TestGreedySwapMeetsInTheMiddle(t *testing.T) {
	m, err := coupling.Line(6)
	require.NoError(t, err)
	c, err := circuit.New(6, 0)
	require.NoError(t, err)
	c.CX(0, 5)

	out, final, err := (&GreedySwap{}).Route(c, m, []int{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Count(circuit.GateSwap))
	assertRouted(t, out, m)
	assert.Equal(t, 1, abs(final[0]-final[5]))
	// swaps on both ends run in parallel
	assert.Less(t, out.Depth(), 5)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestRouteRejectsBadInput(t *testing.T) {
	m, err := coupling.Line(3)
	require.NoError(t, err)
	c, err := circuit.New(3, 0)
	require.NoError(t, err)
	c.CX(0, 2)

	_, _, err = (&GreedySwap{}).Route(c, m, []int{0, 0, 1})
	assert.Error(t, err)
	_, _, err = (&GreedySwap{}).Route(c, m, []int{0, 1})
	assert.Error(t, err)

	wide, err := circuit.New(4, 0)
	require.NoError(t, err)
	_, _, err = (&GreedySwap{}).Route(wide, m, []int{0, 1, 2, 3})
	assert.ErrorIs(t, err, ErrTooManyQubits)

	three := &circuit.Circuit{NumQubits: 3, Ops: []circuit.Op{{Name: "ccx", Qubits: []int{0, 1, 2}}}}
	_, _, err = (&GreedySwap{}).Route(three, m, []int{0, 1, 2})
	assert.ErrorIs(t, err, ErrUnroutable)

	split, err := coupling.New("split", 4, [][2]int{{0, 1}, {2, 3}})
	require.NoError(t, err)
	apart, err := circuit.New(4, 0)
	require.NoError(t, err)
	apart.CX(0, 3)
	_, _, err = (&GreedySwap{}).Route(apart, split, []int{0, 1, 2, 3})
	assert.ErrorIs(t, err, coupling.ErrDisconnected)
}

func TestLayouts(t *testing.T) {
	m, err := coupling.Strided(50, 5)
	require.NoError(t, err)
	c, err := circuit.BernsteinVazirani(9, "101010101")
	require.NoError(t, err)

	trivial, err := TrivialLayout{}.Place(c, m, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, trivial)

	a, err := RandomLayout{}.Place(c, m, 11)
	require.NoError(t, err)
	b, err := RandomLayout{}.Place(c, m, 11)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 10)

	s, err := SabreLayout{Iterations: 2}.Place(c, m, 3)
	require.NoError(t, err)
	require.Len(t, s, 10)
	seen := map[int]bool{}
	for _, p := range s {
		assert.False(t, seen[p], "physical %d used twice", p)
		assert.True(t, p >= 0 && p < 50)
		seen[p] = true
	}
}

func TestPipelineRoutesWorkloads(t *testing.T) {
	m, err := coupling.Strided(50, 5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))
	ctx := context.Background()

	bv, err := circuit.BernsteinVazirani(20, circuit.RandomHiddenString(20, rng))
	require.NoError(t, err)
	qft, err := circuit.QFT(8)
	require.NoError(t, err)
	qv, err := circuit.QuantumVolume(6, 4, circuit.QVSeed(6, 4, 0))
	require.NoError(t, err)

	for _, layout := range []Layout{TrivialLayout{}, RandomLayout{}, SabreLayout{Iterations: 2}} {
		p := &Pipeline{Map: m, Layout: layout, Swap: &GreedySwap{}}
		for _, c := range []*circuit.Circuit{bv, qft, qv} {
			out, err := p.Transpile(ctx, c, 9)
			require.NoError(t, err)
			assert.Equal(t, 50, out.NumQubits)
			assert.Equal(t, c.Size()+out.Count(circuit.GateSwap), out.Size())
			assert.Equal(t, c.TwoQubitOps(), out.TwoQubitOps()-out.Count(circuit.GateSwap))
			assertRouted(t, out, m)
		}
	}

	again, err := NewPipeline(m).Transpile(ctx, qft, 9)
	require.NoError(t, err)
	first, err := NewPipeline(m).Transpile(ctx, qft, 9)
	require.NoError(t, err)
	assert.Equal(t, first.Ops, again.Ops)
}

func TestPipelineErrors(t *testing.T) {
	m, err := coupling.Line(4)
	require.NoError(t, err)
	c, err := circuit.QFT(5)
	require.NoError(t, err)

	_, err = NewPipeline(m).Transpile(context.Background(), c, 1)
	assert.ErrorIs(t, err, ErrTooManyQubits)

	_, err = (&Pipeline{}).Transpile(context.Background(), c, 1)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	small, err := circuit.QFT(3)
	require.NoError(t, err)
	_, err = NewPipeline(m).Transpile(ctx, small, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// scripted returns a circuit with seed%3 swaps, or fails on seed 99.
type scripted struct{ seen []int64 }

func (s *scripted) Transpile(_ context.Context, c *circuit.Circuit, seed int64) (*circuit.Circuit, error) {
	s.seen = append(s.seen, seed)
	if seed == 99 {
		return nil, errors.New("boom")
	}
	out := c.Clone()
	for i := int64(0); i < seed%3; i++ {
		out.Swap(0, 1)
	}
	return out, nil
}

func TestRunnerKeepsFewestSwaps(t *testing.T) {
	c, err := circuit.New(2, 0)
	require.NoError(t, err)
	c.CX(0, 1)

	opt := &scripted{}
	r := &Runner{Optimizer: opt, Seed: 10}
	res, err := r.Run(context.Background(), c, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12, 13}, opt.seen)
	assert.Equal(t, 0, res.SwapCount)
	assert.Equal(t, int64(12), res.Seed)
	assert.Equal(t, 1, res.Size)
	assert.Equal(t, 1, res.Depth)

	one := &scripted{}
	res, err = (&Runner{Optimizer: one, Seed: 1}).Run(context.Background(), c, 0)
	require.NoError(t, err)
	assert.Len(t, one.seen, 1)
	assert.Equal(t, 1, res.SwapCount)
	assert.Equal(t, 2, res.Depth)

	_, err = (&Runner{Optimizer: &scripted{}, Seed: 98}).Run(context.Background(), c, 3)
	assert.ErrorContains(t, err, "trial 2")

	_, err = (&Runner{}).Run(context.Background(), c, 1)
	assert.Error(t, err)
}

func TestCommandOptimizer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	c, err := circuit.BernsteinVazirani(3, "101")
	require.NoError(t, err)
	ctx := context.Background()

	echo := &Command{Path: "sh", Args: []string{"-c", `test "$SABRE_BENCH_SEED" = {seed} && cat`}}
	out, err := echo.Transpile(ctx, c, 42)
	require.NoError(t, err)
	assert.Equal(t, c.NumQubits, out.NumQubits)
	assert.Equal(t, c.Size(), out.Size())
	assert.Equal(t, c.Depth(), out.Depth())

	failing := &Command{Path: "sh", Args: []string{"-c", "echo no route >&2; exit 3"}}
	_, err = failing.Transpile(ctx, c, 1)
	assert.ErrorContains(t, err, "no route")

	garbage := &Command{Path: "sh", Args: []string{"-c", "cat >/dev/null; echo 'gate foo a { x a; }'"}}
	_, err = garbage.Transpile(ctx, c, 1)
	assert.ErrorIs(t, err, circuit.ErrQASMSyntax)

	_, err = (&Command{}).Transpile(ctx, c, 1)
	assert.Error(t, err)
}
