/*
PURPOSE:
  Writes benchmark records to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  - One fixed header covering every benchmark kind; columns a kind does not
    report stay empty.
  - Overwrites the file on each run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (crash resilience).

SELF-HEALING INSTRUCTIONS:
  - If Record grows a field, update csvHeader and the row mapping together.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"

	"github.com/daryltucker/sabre-bench/internal/model"
)

var csvHeader = []string{
	"run_id", "benchmark", "timestamp", "qubits", "depth", "circuit_idx", "seed",
	"hidden_string", "estimated", "swap_count", "transpile_time_s",
	"original_depth", "transpiled_depth", "original_size", "transpiled_size",
}

// CSVWriter handles writing records to a CSV file.
type CSVWriter struct {
	file   File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single record to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	depth, seed := "", ""
	if r.Benchmark == model.BenchQV {
		depth = strconv.Itoa(r.Depth)
	}
	if r.Seed != nil {
		seed = strconv.FormatInt(*r.Seed, 10)
	}
	hidden := r.HiddenString
	if r.Estimated {
		hidden = ""
	}

	row := []string{
		r.RunID,
		string(r.Benchmark),
		r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		strconv.Itoa(r.Qubits),
		depth,
		strconv.Itoa(r.CircuitIdx),
		seed,
		hidden,
		strconv.FormatBool(r.Estimated),
		strconv.Itoa(r.SwapCount),
		fmt.Sprintf("%.6f", r.TranspileTime.Seconds()),
		strconv.Itoa(r.OriginalDepth),
		strconv.Itoa(r.TranspiledDepth),
		strconv.Itoa(r.OriginalSize),
		strconv.Itoa(r.TranspiledSize),
	}

	if err := cw.writer.Write(row); err != nil {
		return err
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return err
	}
	return cw.file.Flush()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
