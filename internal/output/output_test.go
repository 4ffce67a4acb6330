package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daryltucker/sabre-bench/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bvRecord() model.Record {
	return model.Record{
		RunID:           "r1",
		Benchmark:       model.BenchBV,
		Timestamp:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Qubits:          5,
		CircuitIdx:      0,
		HiddenString:    "10100",
		SwapCount:       3,
		TranspileTime:   1500 * time.Millisecond,
		OriginalDepth:   6,
		TranspiledDepth: 12,
		OriginalSize:    18,
		TranspiledSize:  21,
	}
}

func readAll(t *testing.T, path string) string {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestFormatLiteral(t *testing.T) {
	got := FormatLiteral(bvRecord().Fields())
	assert.Equal(t,
		"{'qubits': 5, 'circuit_idx': 0, 'hidden_string': '10100', 'swap_count': 3, "+
			"'transpile_time': 1.5, 'original_depth': 6, 'transpiled_depth': 12, "+
			"'original_size': 18, 'transpiled_size': 21, 'run_id': 'r1'}",
		got)

	est := model.Record{Benchmark: model.BenchBVLarge, Estimated: true, Qubits: 1000,
		HiddenString: "0101", SwapCount: 66, OriginalDepth: 102, TranspiledDepth: 300,
		TranspileTime: 2 * time.Second}
	assert.Equal(t,
		"{'qubits': 1000, 'estimated_swaps': 66, 'estimated_time': 2.0, 'original_depth': 102, 'estimated_depth': 300}",
		FormatLiteral(est.Fields()))

	qv := model.Record{Benchmark: model.BenchQV, Qubits: 10, Depth: 15, CircuitIdx: 2}
	assert.Equal(t,
		"{'qubits': 10, 'depth': 15, 'circuit_idx': 2, 'swap_count': 0, 'transpile_time': 0.0, 'original_depth': 0, 'transpiled_depth': 0}",
		FormatLiteral(qv.Fields()))
}

func TestLiteralValues(t *testing.T) {
	seed := int64(7)
	cases := map[string]any{
		"True":      true,
		"False":     false,
		"None":      nil,
		"'it\\'s'":  "it's",
		"0.25":      0.25,
		"3.0":       3.0,
		"1e-05":     1e-05,
		"1.5e-07":   1.5e-07,
		"1e+16":     1e16,
		"123456.0":  123456.0,
		"-2.5":      -2.5,
		"7":         &seed,
		"42":        int64(42),
		"'[1 2]'":   []int{1, 2},
		"0.0001":    0.0001,
		"0.0":       0.0,
		"12345.678": 12345.678,
	}
	for want, v := range cases {
		assert.Equal(t, want, literal(v), "%#v", v)
	}
}

func TestTextWriterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bv.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	w, err := NewTextWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(bvRecord()))
	second := bvRecord()
	second.CircuitIdx = 1
	require.NoError(t, w.Write(second))
	require.NoError(t, w.Close())

	sc := bufio.NewScanner(bytes.NewBufferString(readAll(t, path)))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "'circuit_idx': 1")
	assert.NotContains(t, lines[0], "stale")
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bv.jsonl")
	w, err := NewRecordWriter(path, "")
	require.NoError(t, err)
	require.IsType(t, &JSONWriter{}, w)
	require.NoError(t, w.Write(bvRecord()))
	require.NoError(t, w.Close())

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(readAll(t, path)), &got))
	assert.Equal(t, 1.5, got["transpile_time"])
	assert.Equal(t, "10100", got["hidden_string"])
	assert.Equal(t, "bv", got["benchmark"])
	assert.NotContains(t, got, "seed")
	assert.NotContains(t, got, "TranspileTime")
}

func TestCSVWriterCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qv.csv.zst")
	w, err := NewRecordWriter(path, "")
	require.NoError(t, err)
	require.IsType(t, &CSVWriter{}, w)

	seed := int64(150003)
	rec := model.Record{RunID: "r2", Benchmark: model.BenchQV, Qubits: 10, Depth: 5,
		CircuitIdx: 3, Seed: &seed, SwapCount: 40, TranspileTime: 250 * time.Millisecond}
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 4)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4], "zstd frame magic")

	rows, err := csv.NewReader(bytes.NewBufferString(readAll(t, path))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "5", rows[1][4])
	assert.Equal(t, "150003", rows[1][6])
	assert.Equal(t, "0.250000", rows[1][10])
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatText, FormatFor("bv_benchmark_results.txt"))
	assert.Equal(t, FormatJSONL, FormatFor("out/a.jsonl.zst"))
	assert.Equal(t, FormatCSV, FormatFor("A.CSV"))
	assert.Equal(t, FormatText, FormatFor("results"))

	_, err := NewRecordWriter(filepath.Join(t.TempDir(), "x"), "xml")
	assert.Error(t, err)
}

func TestConfigure(t *testing.T) {
	orig := Logger
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "warn", "json"))
	Logger.Info("hidden")
	Logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Error(t, Configure(&buf, "loud", "text"))
	assert.Error(t, Configure(&buf, "info", "xml"))

	l, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}
