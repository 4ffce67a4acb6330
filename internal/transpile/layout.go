package transpile

import (
	"math/rand"
	"slices"

	"github.com/daryltucker/sabre-bench/internal/circuit"
	"github.com/daryltucker/sabre-bench/internal/coupling"
)

// DefaultLayoutIterations is the number of forward/backward refinement rounds SabreLayout runs.
const DefaultLayoutIterations = 3

// TrivialLayout places logical qubit i on physical qubit i.
type TrivialLayout struct{}

func (TrivialLayout) Place(c *circuit.Circuit, m *coupling.Map, _ int64) ([]int, error) {
	if err := checkWidth(c, m); err != nil {
		return nil, err
	}
	out := make([]int, c.NumQubits)
	for i := range out {
		out[i] = i
	}
	return out, nil
}

// RandomLayout places logical qubits on a seeded random subset of physical qubits.
type RandomLayout struct{}

func (RandomLayout) Place(c *circuit.Circuit, m *coupling.Map, seed int64) ([]int, error) {
	if err := checkWidth(c, m); err != nil {
		return nil, err
	}
	perm := rand.New(rand.NewSource(seed)).Perm(m.Size())
	return perm[:c.NumQubits], nil
}

// SabreLayout starts from a random placement and refines it by routing the
// circuit forward, then its reverse, carrying each pass's final placement into
// the next. A placement that routes well in both directions tends to need few
// swaps at the start.
type SabreLayout struct {
	Iterations int
}

func (l SabreLayout) Place(c *circuit.Circuit, m *coupling.Map, seed int64) ([]int, error) {
	placement, err := RandomLayout{}.Place(c, m, seed)
	if err != nil {
		return nil, err
	}
	interactions := interactionOnly(c)
	if len(interactions.Ops) == 0 {
		return placement, nil
	}
	reversed := interactions.Clone()
	slices.Reverse(reversed.Ops)

	router := &GreedySwap{}
	phys := fullPlacement(placement, m.Size())
	for i := 0; i < l.Iterations; i++ {
		for _, pass := range []*circuit.Circuit{interactions, reversed} {
			_, final, err := router.Route(widen(pass, m.Size()), m, phys)
			if err != nil {
				return nil, err
			}
			phys = final
		}
	}
	return phys[:c.NumQubits], nil
}

// interactionOnly keeps the two-qubit ops, the only ones that constrain placement.
func interactionOnly(c *circuit.Circuit) *circuit.Circuit {
	out := &circuit.Circuit{NumQubits: c.NumQubits}
	for _, op := range c.Ops {
		if len(op.Qubits) == 2 {
			out.Ops = append(out.Ops, circuit.Op{Name: op.Name, Qubits: slices.Clone(op.Qubits)})
		}
	}
	return out
}

// widen pads the circuit with idle logical qubits so every physical qubit has a
// logical owner; swaps can then move idle qubits and the placement stays a permutation.
func widen(c *circuit.Circuit, n int) *circuit.Circuit {
	out := *c
	out.NumQubits = n
	return &out
}

// fullPlacement extends a partial placement to a permutation of 0..n-1.
func fullPlacement(partial []int, n int) []int {
	used := make([]bool, n)
	out := slices.Clone(partial)
	for _, p := range partial {
		used[p] = true
	}
	for p := 0; p < n; p++ {
		if !used[p] {
			out = append(out, p)
		}
	}
	return out
}
