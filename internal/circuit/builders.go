package circuit

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// ErrInvalidHiddenString is returned for hidden strings that are not n binary digits.
var ErrInvalidHiddenString = errors.New("circuit: hidden string must be a binary string of length n")

// qvBlockParams is the number of random angles describing one SU(4) block.
const qvBlockParams = 15

// RandomHiddenString returns n uniformly random bits.
func RandomHiddenString(n int, rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		if rng.Intn(2) == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// SparseHiddenString returns an n-bit string with exactly floor(n*density) ones at random
// positions. density is clamped to [0, 1].
func SparseHiddenString(n int, density float64, rng *rand.Rand) string {
	if n <= 0 {
		return ""
	}
	ones := InteractionCount(n, density)
	bits := make([]byte, n)
	for i := range bits {
		bits[i] = '0'
	}
	for _, pos := range rng.Perm(n)[:ones] {
		bits[pos] = '1'
	}
	return string(bits)
}

// InteractionCount is the number of set bits the density model yields for n qubits.
func InteractionCount(n int, density float64) int {
	if n <= 0 {
		return 0
	}
	density = math.Min(1, math.Max(0, density))
	c := int(math.Floor(float64(n) * density))
	return min(max(c, 0), n)
}

func validateHidden(n int, hidden string) error {
	if len(hidden) != n {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidHiddenString, len(hidden), n)
	}
	if strings.Trim(hidden, "01") != "" {
		return fmt.Errorf("%w: %q", ErrInvalidHiddenString, hidden)
	}
	return nil
}

// BernsteinVazirani builds the BV circuit for hidden over n input qubits plus one ancilla.
func BernsteinVazirani(n int, hidden string) (*Circuit, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQubits, n)
	}
	if err := validateHidden(n, hidden); err != nil {
		return nil, err
	}
	c, err := New(n+1, n)
	if err != nil {
		return nil, err
	}

	// ancilla in |1>
	c.X(n)
	for i := 0; i <= n; i++ {
		c.H(i)
	}
	// oracle
	for i := 0; i < n; i++ {
		if hidden[i] == '1' {
			c.CX(i, n)
		}
	}
	for i := 0; i < n; i++ {
		c.H(i)
	}
	for i := 0; i < n; i++ {
		c.Measure(i, i)
	}
	return c, nil
}

// QFT builds the textbook quantum Fourier transform without the final qubit reversal.
func QFT(n int) (*Circuit, error) {
	c, err := New(n, 0)
	if err != nil {
		return nil, err
	}
	for j := 0; j < n; j++ {
		for k := 0; k < j; k++ {
			c.CP(math.Pi/math.Pow(2, float64(j-k)), k, j)
		}
		c.H(j)
	}
	return c, nil
}

// QVSeed derives the per-circuit seed used by the quantum volume sweep.
func QVSeed(n, depth, idx int) int64 {
	return int64(idx + n*100 + depth*10000)
}

// QuantumVolume builds a model circuit of depth layers. Each layer pairs a seeded random
// permutation of the qubits into floor(n/2) opaque two-qubit unitary blocks.
func QuantumVolume(n, depth int, seed int64) (*Circuit, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("circuit: quantum volume depth must be positive, got %d", depth)
	}
	c, err := New(n, 0)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	params := make([]float64, qvBlockParams)
	for layer := 0; layer < depth; layer++ {
		perm := rng.Perm(n)
		for k := 0; k+1 < n; k += 2 {
			for i := range params {
				params[i] = rng.Float64() * 2 * math.Pi
			}
			c.Unitary(perm[k], perm[k+1], params)
		}
	}
	return c, nil
}
