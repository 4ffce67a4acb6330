package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/daryltucker/sabre-bench/internal/model"
	"github.com/daryltucker/sabre-bench/internal/output"
)

// Recorder accumulates records in insertion order. Records are never modified
// or removed once added.
type Recorder struct {
	mu      sync.Mutex
	records []model.Record
}

func NewRecorder() *Recorder { return &Recorder{} }

// Add appends r.
func (r *Recorder) Add(rec model.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// WriteAll writes every record to w in order and closes it.
func (r *Recorder) WriteAll(w output.RecordWriter) error {
	var errs []error
	for i, rec := range r.Records() {
		if err := w.Write(rec); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			break
		}
	}
	errs = append(errs, w.Close())
	return errors.Join(errs...)
}
