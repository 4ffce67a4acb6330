/*
PURPOSE:
  Minimal quantum circuit object model used by the benchmark sweeps.
  A circuit is an ordered list of operations over qubit and clbit wires.

REQUIREMENTS:
  - Append gates (h, x, cx, cp, swap, measure, unitary blocks).
  - Query depth, size and per-name operation counts.

ARCHITECTURE INTEGRATION:
  - Built by: builders.go (BV, QFT, QV), qasm.go (ParseQASM)
  - Consumed by: internal/transpile, internal/engine

ERROR HANDLING:
  - Append validates wire indices and returns an error.
  - The typed gate helpers panic on out-of-range wires (builder bugs, not input errors).

RELATED FILES:
  - internal/circuit/spec.go
  - internal/circuit/qasm.go
*/

package circuit

import (
	"errors"
	"fmt"
	"slices"
)

// Operation names understood by the rest of the module.
const (
	GateH       = "h"
	GateX       = "x"
	GateCX      = "cx"
	GateCP      = "cp"
	GateSwap    = "swap"
	GateMeasure = "measure"
	GateBarrier = "barrier"
	GateUnitary = "unitary"
)

var (
	// ErrInvalidQubits is returned when a circuit or spec is requested with a non-positive qubit count.
	ErrInvalidQubits = errors.New("circuit: qubit count must be positive")
	// ErrWireOutOfRange is returned when an operation references a wire the circuit does not have.
	ErrWireOutOfRange = errors.New("circuit: wire index out of range")
)

// Op is a single circuit operation.
type Op struct {
	Name   string
	Qubits []int
	Clbits []int
	Params []float64
}

// Circuit holds an ordered operation list over NumQubits qubits and NumClbits clbits.
type Circuit struct {
	NumQubits int
	NumClbits int
	Ops       []Op
}

// New returns an empty circuit.
func New(numQubits, numClbits int) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQubits, numQubits)
	}
	if numClbits < 0 {
		return nil, fmt.Errorf("circuit: negative clbit count %d", numClbits)
	}
	return &Circuit{NumQubits: numQubits, NumClbits: numClbits}, nil
}

// Append validates op against the circuit's wires and adds it.
func (c *Circuit) Append(op Op) error {
	for _, q := range op.Qubits {
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("%w: qubit %d (circuit has %d)", ErrWireOutOfRange, q, c.NumQubits)
		}
	}
	for _, b := range op.Clbits {
		if b < 0 || b >= c.NumClbits {
			return fmt.Errorf("%w: clbit %d (circuit has %d)", ErrWireOutOfRange, b, c.NumClbits)
		}
	}
	c.Ops = append(c.Ops, op)
	return nil
}

func (c *Circuit) mustAppend(op Op) {
	if err := c.Append(op); err != nil {
		panic(err)
	}
}

func (c *Circuit) H(q int) { c.mustAppend(Op{Name: GateH, Qubits: []int{q}}) }

func (c *Circuit) X(q int) { c.mustAppend(Op{Name: GateX, Qubits: []int{q}}) }

func (c *Circuit) CX(control, target int) {
	c.mustAppend(Op{Name: GateCX, Qubits: []int{control, target}})
}

// CP appends a controlled phase rotation by theta.
func (c *Circuit) CP(theta float64, control, target int) {
	c.mustAppend(Op{Name: GateCP, Qubits: []int{control, target}, Params: []float64{theta}})
}

func (c *Circuit) Swap(a, b int) { c.mustAppend(Op{Name: GateSwap, Qubits: []int{a, b}}) }

func (c *Circuit) Measure(q, b int) {
	c.mustAppend(Op{Name: GateMeasure, Qubits: []int{q}, Clbits: []int{b}})
}

// Unitary appends an opaque two-qubit block described by params.
func (c *Circuit) Unitary(a, b int, params []float64) {
	c.mustAppend(Op{Name: GateUnitary, Qubits: []int{a, b}, Params: slices.Clone(params)})
}

// Size returns the number of operations.
func (c *Circuit) Size() int { return len(c.Ops) }

// Count returns how many operations carry the given name.
func (c *Circuit) Count(name string) int {
	n := 0
	for _, op := range c.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// TwoQubitOps returns the number of operations acting on exactly two qubits.
func (c *Circuit) TwoQubitOps() int {
	n := 0
	for _, op := range c.Ops {
		if len(op.Qubits) == 2 && op.Name != GateBarrier {
			n++
		}
	}
	return n
}

// Depth returns the length of the longest chain of operations sharing a qubit or clbit wire.
// Barriers do not contribute.
func (c *Circuit) Depth() int {
	levels := make([]int, c.NumQubits+c.NumClbits)
	depth := 0
	for _, op := range c.Ops {
		if op.Name == GateBarrier {
			continue
		}
		lvl := 0
		for _, q := range op.Qubits {
			lvl = max(lvl, levels[q])
		}
		for _, b := range op.Clbits {
			lvl = max(lvl, levels[c.NumQubits+b])
		}
		lvl++
		for _, q := range op.Qubits {
			levels[q] = lvl
		}
		for _, b := range op.Clbits {
			levels[c.NumQubits+b] = lvl
		}
		depth = max(depth, lvl)
	}
	return depth
}

// Clone returns a deep copy.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{NumQubits: c.NumQubits, NumClbits: c.NumClbits, Ops: make([]Op, len(c.Ops))}
	for i, op := range c.Ops {
		out.Ops[i] = Op{
			Name:   op.Name,
			Qubits: slices.Clone(op.Qubits),
			Clbits: slices.Clone(op.Clbits),
			Params: slices.Clone(op.Params),
		}
	}
	return out
}
