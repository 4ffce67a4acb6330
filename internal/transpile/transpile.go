/*
PURPOSE:
  Map logical circuits onto a device coupling graph and measure how much
  routing overhead (SWAP insertions) the mapping costs.

REQUIREMENTS:
  - The optimizer is pluggable: a built-in layout + swap pipeline, or an
    external program speaking OpenQASM 2.0 over stdin/stdout.
  - Outputs act on physical qubits; every inserted SWAP is an op named "swap".
  - Best-of-N trials keeps the result with the fewest swaps; the reported time
    covers all trials.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine sweeps
  - Depends on: internal/circuit, internal/coupling

ERROR HANDLING:
  - Circuits wider than the device fail with ErrTooManyQubits.
  - Ops on three or more qubits fail with ErrUnroutable.
  - No retries and no timeouts; cancellation comes only from ctx.
*/

package transpile

import (
	"context"
	"errors"
	"fmt"

	"github.com/daryltucker/sabre-bench/internal/circuit"
	"github.com/daryltucker/sabre-bench/internal/coupling"
)

var (
	// ErrTooManyQubits is returned when a circuit needs more qubits than the device has.
	ErrTooManyQubits = errors.New("transpile: circuit wider than coupling map")
	// ErrUnroutable is returned for ops the router cannot place.
	ErrUnroutable = errors.New("transpile: op cannot be routed")
)

// Optimizer turns a logical circuit into one that respects a device's connectivity.
// The seed makes randomized optimizers reproducible.
type Optimizer interface {
	Transpile(ctx context.Context, c *circuit.Circuit, seed int64) (*circuit.Circuit, error)
}

// Layout chooses the initial placement: result[logical] = physical.
type Layout interface {
	Place(c *circuit.Circuit, m *coupling.Map, seed int64) ([]int, error)
}

// Pipeline is the built-in two-stage optimizer: place, then route.
type Pipeline struct {
	Map    *coupling.Map
	Layout Layout
	Swap   *GreedySwap
}

// NewPipeline returns the default optimizer for m: bidirectional layout refinement
// followed by greedy swap routing.
func NewPipeline(m *coupling.Map) *Pipeline {
	return &Pipeline{Map: m, Layout: SabreLayout{Iterations: DefaultLayoutIterations}, Swap: &GreedySwap{}}
}

func (p *Pipeline) Transpile(ctx context.Context, c *circuit.Circuit, seed int64) (*circuit.Circuit, error) {
	if p.Map == nil {
		return nil, errors.New("transpile: pipeline has no coupling map")
	}
	if err := checkWidth(c, p.Map); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout := p.Layout
	if layout == nil {
		layout = TrivialLayout{}
	}
	placement, err := layout.Place(c, p.Map, seed)
	if err != nil {
		return nil, fmt.Errorf("transpile: layout: %w", err)
	}
	swap := p.Swap
	if swap == nil {
		swap = &GreedySwap{}
	}
	out, _, err := swap.Route(c, p.Map, placement)
	if err != nil {
		return nil, fmt.Errorf("transpile: routing: %w", err)
	}
	return out, nil
}

func checkWidth(c *circuit.Circuit, m *coupling.Map) error {
	if c.NumQubits > m.Size() {
		return fmt.Errorf("%w: %d qubits on %s (%d)", ErrTooManyQubits, c.NumQubits, m.Name(), m.Size())
	}
	return nil
}
