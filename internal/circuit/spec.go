package circuit

import (
	"fmt"
	"math/rand"
	"strings"
)

// Kind names a benchmark circuit family.
type Kind string

const (
	KindBV  Kind = "bv"
	KindQFT Kind = "qft"
	KindQV  Kind = "qv"
)

// Spec describes a benchmark circuit without necessarily materializing it.
// The zero value is not useful; build one with NewBVSpec, LargeBVSpec, NewQFTSpec or NewQVSpec.
type Spec struct {
	kind         Kind
	qubits       int
	hidden       string
	seed         int64
	hasSeed      bool
	depthParam   int
	interactions int
	totalGates   int
	logicalDepth int
}

func (s Spec) Kind() Kind { return s.kind }
func (s Spec) Qubits() int { return s.qubits }
func (s Spec) HiddenString() string { return s.hidden }
func (s Spec) DepthParam() int { return s.depthParam }
func (s Spec) InteractionGates() int { return s.interactions }
func (s Spec) TotalGates() int { return s.totalGates }
func (s Spec) LogicalDepth() int { return s.logicalDepth }

// Seed returns the spec's seed and whether one was set.
func (s Spec) Seed() (int64, bool) { return s.seed, s.hasSeed }

// NewBVSpec describes a BV instance for a fixed hidden string.
func NewBVSpec(n int, hidden string) (Spec, error) {
	if n <= 0 {
		return Spec{}, fmt.Errorf("%w: got %d", ErrInvalidQubits, n)
	}
	if err := validateHidden(n, hidden); err != nil {
		return Spec{}, err
	}
	ones := strings.Count(hidden, "1")
	return Spec{
		kind:         KindBV,
		qubits:       n,
		hidden:       hidden,
		interactions: ones,
		// H layer + oracle + H layer
		logicalDepth: 2 + ones,
		// initial H on n+1, oracle, final H on n
		totalGates: 2*n + 1 + ones,
	}, nil
}

// LargeBVSpec describes a BV instance too large to build, drawing a sparse hidden string
// with floor(n*density) ones.
func LargeBVSpec(n int, density float64, rng *rand.Rand) (Spec, error) {
	if n <= 0 {
		return Spec{}, fmt.Errorf("%w: got %d", ErrInvalidQubits, n)
	}
	return NewBVSpec(n, SparseHiddenString(n, density, rng))
}

// NewQFTSpec describes an n-qubit QFT.
func NewQFTSpec(n int) (Spec, error) {
	c, err := QFT(n)
	if err != nil {
		return Spec{}, err
	}
	pairs := n * (n - 1) / 2
	return Spec{
		kind:         KindQFT,
		qubits:       n,
		interactions: pairs,
		totalGates:   pairs + n,
		logicalDepth: c.Depth(),
	}, nil
}

// NewQVSpec describes a seeded quantum volume model circuit.
func NewQVSpec(n, depth int, seed int64) (Spec, error) {
	if n <= 0 {
		return Spec{}, fmt.Errorf("%w: got %d", ErrInvalidQubits, n)
	}
	if depth <= 0 {
		return Spec{}, fmt.Errorf("circuit: quantum volume depth must be positive, got %d", depth)
	}
	blocks := depth * (n / 2)
	logical := depth
	if blocks == 0 {
		logical = 0
	}
	return Spec{
		kind:         KindQV,
		qubits:       n,
		seed:         seed,
		hasSeed:      true,
		depthParam:   depth,
		interactions: blocks,
		totalGates:   blocks,
		logicalDepth: logical,
	}, nil
}

// Build materializes the circuit the spec describes.
func (s Spec) Build() (*Circuit, error) {
	switch s.kind {
	case KindBV:
		return BernsteinVazirani(s.qubits, s.hidden)
	case KindQFT:
		return QFT(s.qubits)
	case KindQV:
		return QuantumVolume(s.qubits, s.depthParam, s.seed)
	default:
		return nil, fmt.Errorf("circuit: cannot build spec of kind %q", s.kind)
	}
}
