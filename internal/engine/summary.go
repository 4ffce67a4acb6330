package engine

import (
	"fmt"
	"io"

	"github.com/daryltucker/sabre-bench/internal/model"
)

type groupKey struct {
	bench  model.Benchmark
	qubits int
	depth  int
}

// Summarize groups records by (benchmark, qubits, depth) in first-seen order and
// averages swap count, transpile seconds and depth increase over each group.
func Summarize(records []model.Record) []model.Summary {
	type acc struct {
		sum   model.Summary
		swaps int
		secs  float64
		incr  int
	}
	var order []groupKey
	groups := map[groupKey]*acc{}
	for _, r := range records {
		k := groupKey{r.Benchmark, r.Qubits, r.Depth}
		a, ok := groups[k]
		if !ok {
			a = &acc{sum: model.Summary{RunID: r.RunID, Benchmark: r.Benchmark, Qubits: r.Qubits, Depth: r.Depth}}
			groups[k] = a
			order = append(order, k)
		}
		a.sum.Count++
		a.swaps += r.SwapCount
		a.secs += r.TranspileTime.Seconds()
		a.incr += r.DepthIncrease()
	}

	out := make([]model.Summary, 0, len(order))
	for _, k := range order {
		a := groups[k]
		n := float64(a.sum.Count)
		a.sum.MeanSwaps = float64(a.swaps) / n
		a.sum.MeanSeconds = a.secs / n
		a.sum.MeanDepthIncrease = float64(a.incr) / n
		out = append(out, a.sum)
	}
	return out
}

// PrintSummaries writes the human-readable summary block.
func PrintSummaries(w io.Writer, sums []model.Summary) {
	if len(sums) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSummary Statistics:")
	for _, s := range sums {
		if s.Benchmark == model.BenchQV {
			fmt.Fprintf(w, "Qubits: %d, Depth: %d\n", s.Qubits, s.Depth)
		} else {
			fmt.Fprintf(w, "Qubits: %d\n", s.Qubits)
		}
		fmt.Fprintf(w, "  Avg SWAP count: %.2f\n", s.MeanSwaps)
		fmt.Fprintf(w, "  Avg transpile time: %.4fs\n", s.MeanSeconds)
		fmt.Fprintf(w, "  Avg depth increase: %.2f\n", s.MeanDepthIncrease)
	}
}
