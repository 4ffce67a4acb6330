/*
PURPOSE:
  Core data structures shared by the benchmark sweeps and the output writers:
  one Record per benchmarked circuit and one Summary per parameter group.

REQUIREMENTS:
  User-specified:
  - Record qubits, circuit index, hidden string, swap count, transpile time,
    original/transpiled depth and size.
  - Large instances carry estimated figures and say so.

  Implementation-discovered:
  - Each benchmark kind reports its own key set, in a fixed order, in the
    literal text format. Fields() is that order.
  - JSON keeps the text format's key names; durations are seconds.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Records are append-only; nothing mutates one after it is recorded.

RELATED FILES:
  - internal/output/text.go
  - internal/output/json.go
  - internal/output/csv.go

MAINTENANCE:
  - Adding a field means adding it to Fields() and the CSV header.
*/

package model

import (
	"encoding/json"
	"time"
)

// Benchmark names a sweep.
type Benchmark string

const (
	BenchBV      Benchmark = "bv"
	BenchBVLarge Benchmark = "bv-large"
	BenchQFT     Benchmark = "qft"
	BenchQV      Benchmark = "qv"
)

// Record is the outcome of benchmarking one circuit.
type Record struct {
	RunID      string    `json:"run_id"`
	Benchmark  Benchmark `json:"benchmark"`
	Timestamp  time.Time `json:"timestamp"`
	Qubits     int       `json:"qubits"`
	Depth      int       `json:"depth,omitempty"`
	CircuitIdx int       `json:"circuit_idx"`
	Seed       *int64    `json:"seed,omitempty"`
	// HiddenString is left out of the text format for estimated instances; it can be 20k bits.
	HiddenString string `json:"hidden_string,omitempty"`
	Estimated    bool   `json:"estimated,omitempty"`

	SwapCount       int           `json:"swap_count"`
	TranspileTime   time.Duration `json:"-"`
	OriginalDepth   int           `json:"original_depth"`
	TranspiledDepth int           `json:"transpiled_depth"`
	OriginalSize    int           `json:"original_size"`
	TranspiledSize  int           `json:"transpiled_size"`
}

// MarshalJSON writes TranspileTime as float seconds.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return json.Marshal(struct {
		plain
		TranspileTime float64 `json:"transpile_time"`
	}{plain(r), r.TranspileTime.Seconds()})
}

// DepthIncrease is the routing overhead in circuit depth.
func (r Record) DepthIncrease() int { return r.TranspiledDepth - r.OriginalDepth }

// Field is one key/value pair of a record's text form.
type Field struct {
	Key   string
	Value any
}

// Fields lists the record's reported values in output order.
func (r Record) Fields() []Field {
	secs := r.TranspileTime.Seconds()
	var fs []Field
	switch {
	case r.Benchmark == BenchBVLarge && r.Estimated:
		fs = []Field{
			{"qubits", r.Qubits},
			{"estimated_swaps", r.SwapCount},
			{"estimated_time", secs},
			{"original_depth", r.OriginalDepth},
			{"estimated_depth", r.TranspiledDepth},
		}
	case r.Benchmark == BenchBVLarge:
		fs = []Field{
			{"qubits", r.Qubits},
			{"swap_count", r.SwapCount},
			{"transpile_time", secs},
			{"original_depth", r.OriginalDepth},
			{"transpiled_depth", r.TranspiledDepth},
		}
	case r.Benchmark == BenchQV:
		fs = []Field{
			{"qubits", r.Qubits},
			{"depth", r.Depth},
			{"circuit_idx", r.CircuitIdx},
			{"swap_count", r.SwapCount},
			{"transpile_time", secs},
			{"original_depth", r.OriginalDepth},
			{"transpiled_depth", r.TranspiledDepth},
		}
	case r.Benchmark == BenchQFT:
		fs = []Field{
			{"qubits", r.Qubits},
			{"swap_count", r.SwapCount},
			{"transpile_time", secs},
			{"original_depth", r.OriginalDepth},
			{"transpiled_depth", r.TranspiledDepth},
			{"operations", r.TranspiledSize},
		}
	default:
		fs = []Field{
			{"qubits", r.Qubits},
			{"circuit_idx", r.CircuitIdx},
			{"hidden_string", r.HiddenString},
			{"swap_count", r.SwapCount},
			{"transpile_time", secs},
			{"original_depth", r.OriginalDepth},
			{"transpiled_depth", r.TranspiledDepth},
			{"original_size", r.OriginalSize},
			{"transpiled_size", r.TranspiledSize},
		}
	}
	if r.RunID != "" {
		fs = append(fs, Field{"run_id", r.RunID})
	}
	return fs
}

// Summary aggregates the records of one (qubits, depth) group.
type Summary struct {
	RunID             string    `json:"run_id"`
	Benchmark         Benchmark `json:"benchmark"`
	Qubits            int       `json:"qubits"`
	Depth             int       `json:"depth,omitempty"`
	Count             int       `json:"count"`
	MeanSwaps         float64   `json:"avg_swap_count"`
	MeanSeconds       float64   `json:"avg_transpile_time"`
	MeanDepthIncrease float64   `json:"avg_depth_increase"`
}
