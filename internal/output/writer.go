package output

import (
	"fmt"
	"strings"

	"github.com/daryltucker/sabre-bench/internal/model"
)

// RecordWriter is the sink a Recorder drains into.
type RecordWriter interface {
	Write(model.Record) error
	Close() error
}

// Output formats.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// FormatFor infers the format from path: .jsonl/.json, .csv, anything else is text.
// A trailing .zst is ignored.
func FormatFor(path string) string {
	switch baseExt(path) {
	case ".jsonl", ".json", ".ndjson":
		return FormatJSONL
	case ".csv":
		return FormatCSV
	}
	return FormatText
}

// NewRecordWriter opens path in format, or the format inferred from path when empty.
func NewRecordWriter(path, format string) (RecordWriter, error) {
	if format == "" {
		format = FormatFor(path)
	}
	switch strings.ToLower(format) {
	case FormatText:
		return NewTextWriter(path)
	case FormatJSONL, "json":
		return NewJSONWriter(path)
	case FormatCSV:
		return NewCSVWriter(path)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
