/*
PURPOSE:
  Writes benchmark records to a JSON Lines file (NDJSON).
  Optimized for machine parsing.

REQUIREMENTS:
  Implementation-discovered:
  - JSON Lines is better for streaming than a single large array (append-friendly).
  - Durations are float seconds (see model.Record.MarshalJSON).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("results.jsonl")
  w.Write(record)
  w.Close()
*/

package output

import (
	"encoding/json"
	"sync"

	"github.com/daryltucker/sabre-bench/internal/model"
)

// JSONWriter handles writing records to a JSON Lines file.
type JSONWriter struct {
	file    File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single record as a JSON line.
func (jw *JSONWriter) Write(r model.Record) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.encoder.Encode(r); err != nil {
		return err
	}
	return jw.file.Flush()
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
