/*
PURPOSE:
  Writes benchmark records as one dictionary literal per line:
    {'qubits': 5, 'circuit_idx': 0, 'hidden_string': '10100', ...}
  This is the historical results format; downstream notebooks eval() it.

REQUIREMENTS:
  - Key order follows model.Record.Fields().
  - Strings single-quoted, floats always carry a decimal point or exponent,
    booleans True/False.
  - Overwrites the file on each run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Recorder.WriteAll)

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Flush after every record (crash resilience).
  - Thread-safe.
*/

package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/daryltucker/sabre-bench/internal/model"
)

// TextWriter writes records in the literal line format.
type TextWriter struct {
	file File
	mu   sync.Mutex
}

// NewTextWriter creates (or truncates) path.
func NewTextWriter(path string) (*TextWriter, error) {
	f, err := Create(path)
	if err != nil {
		return nil, err
	}
	return &TextWriter{file: f}, nil
}

// Write writes a single record line.
func (tw *TextWriter) Write(r model.Record) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if _, err := io.WriteString(tw.file, FormatLiteral(r.Fields())+"\n"); err != nil {
		return err
	}
	return tw.file.Flush()
}

// Close closes the underlying file.
func (tw *TextWriter) Close() error {
	return tw.file.Close()
}

// FormatLiteral renders fields as a dictionary literal.
func FormatLiteral(fields []model.Field) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(f.Key))
		b.WriteString(": ")
		b.WriteString(literal(f.Value))
	}
	b.WriteByte('}')
	return b.String()
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return quote(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return pyFloat(x)
	case *int64:
		if x == nil {
			return "None"
		}
		return strconv.FormatInt(*x, 10)
	default:
		return quote(fmt.Sprint(x))
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return "'" + s + "'"
}

// pyFloat formats the shortest round-tripping representation, switching to an
// exponent below 1e-4 and at or above 1e16.
func pyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
