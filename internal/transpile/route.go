package transpile

import (
	"fmt"
	"slices"

	"github.com/daryltucker/sabre-bench/internal/circuit"
	"github.com/daryltucker/sabre-bench/internal/coupling"
)

// GreedySwap routes ops in program order. When a two-qubit op lands on uncoupled
// physical qubits, both operands walk toward each other along a shortest path,
// one SWAP per step, until they are adjacent.
type GreedySwap struct{}

// Route returns the physical circuit and the final placement (final[logical] = physical).
func (g *GreedySwap) Route(c *circuit.Circuit, m *coupling.Map, placement []int) (*circuit.Circuit, []int, error) {
	if err := checkWidth(c, m); err != nil {
		return nil, nil, err
	}
	if len(placement) != c.NumQubits {
		return nil, nil, fmt.Errorf("placement covers %d qubits, circuit has %d", len(placement), c.NumQubits)
	}
	l2p := slices.Clone(placement)
	p2l := make([]int, m.Size())
	for i := range p2l {
		p2l[i] = -1
	}
	for l, p := range l2p {
		if p < 0 || p >= m.Size() || p2l[p] != -1 {
			return nil, nil, fmt.Errorf("placement %v is not injective onto %d qubits", placement, m.Size())
		}
		p2l[p] = l
	}

	out, err := circuit.New(m.Size(), c.NumClbits)
	if err != nil {
		return nil, nil, err
	}
	swap := func(a, b int) error {
		la, lb := p2l[a], p2l[b]
		p2l[a], p2l[b] = lb, la
		if la >= 0 {
			l2p[la] = b
		}
		if lb >= 0 {
			l2p[lb] = a
		}
		return out.Append(circuit.Op{Name: circuit.GateSwap, Qubits: []int{a, b}})
	}

	for _, op := range c.Ops {
		if len(op.Qubits) > 2 && op.Name != circuit.GateBarrier {
			return nil, nil, fmt.Errorf("%w: %s on %d qubits", ErrUnroutable, op.Name, len(op.Qubits))
		}
		if len(op.Qubits) == 2 && op.Name != circuit.GateBarrier {
			pa, pb := l2p[op.Qubits[0]], l2p[op.Qubits[1]]
			if !m.Connected(pa, pb) {
				path, err := m.ShortestPath(pa, pb)
				if err != nil {
					return nil, nil, err
				}
				d := len(path) - 1
				front := (d - 1) / 2
				back := d - 1 - front
				for i := 0; i < front; i++ {
					if err := swap(path[i], path[i+1]); err != nil {
						return nil, nil, err
					}
				}
				for j := 0; j < back; j++ {
					if err := swap(path[d-j], path[d-j-1]); err != nil {
						return nil, nil, err
					}
				}
			}
		}

		mapped := circuit.Op{
			Name:   op.Name,
			Qubits: make([]int, len(op.Qubits)),
			Clbits: slices.Clone(op.Clbits),
			Params: slices.Clone(op.Params),
		}
		for i, q := range op.Qubits {
			mapped.Qubits[i] = l2p[q]
		}
		if err := out.Append(mapped); err != nil {
			return nil, nil, err
		}
	}
	return out, l2p, nil
}
