package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultsMatchHistoricalSweeps(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int{5, 10, 15, 20, 25, 30, 35, 40, 45, 50}, cfg.BV.Qubits)
	assert.Equal(t, 5, cfg.BV.CircuitsPerSize)
	assert.Equal(t, []int{1000, 5000, 10000, 15000, 19998}, cfg.BVLarge.LargeQubits)
	assert.Equal(t, "strided:50:5", cfg.BVLarge.SmallCoupling)
	assert.Equal(t, 10, cfg.QFT.MinQubits)
	assert.Equal(t, 20, cfg.QFT.MaxQubits)
	assert.Equal(t, []int{10, 15, 20, 25}, cfg.QV.Depths)
	assert.Equal(t, 1, cfg.QV.Trials)
	assert.Equal(t, []string{"cx", "ecr", "cz"}, cfg.Calibration.TwoQubitGates)
	assert.Equal(t, "fake_oslo", cfg.Calibration.SubstituteDevice)
	assert.Zero(t, cfg.Provider.Timeout)
	assert.Equal(t, 1, cfg.Provider.Retries)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	yml := `
output_dir: results
seed: 42
bv:
  qubits: [3, 4]
  circuits_per_size: 2
qv:
  trials: 5
provider:
  timeout: 30s
  instance: crn:v1:abc
redis:
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "results", cfg.OutputDir)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, []int{3, 4}, cfg.BV.Qubits)
	assert.Equal(t, 2, cfg.BV.CircuitsPerSize)
	assert.Equal(t, "fake_washington", cfg.BV.Coupling, "unset keys keep defaults")
	assert.Equal(t, 5, cfg.QV.Trials)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "crn:v1:abc", cfg.Provider.Instance)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bv: [not, a, map"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadSearchesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().BV, cfg.BV)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sabre-bench.yaml"), []byte("qft: {min_qubits: 3, max_qubits: 4}\n"), 0o644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.QFT.MinQubits)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(env(map[string]string{EnvQiskitToken: "qiskit"}))
	assert.Equal(t, "qiskit", cfg.Provider.Token)

	cfg = DefaultConfig()
	cfg.ApplyEnv(env(map[string]string{
		EnvToken:       "mine",
		EnvQiskitToken: "qiskit",
		EnvAPIURL:      "http://localhost:9000",
		EnvOutputDir:   "/tmp/out",
		EnvRedisAddr:   "localhost:6379",
	}))
	assert.Equal(t, "mine", cfg.Provider.Token)
	assert.Equal(t, "http://localhost:9000", cfg.Provider.APIURL)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	cfg = DefaultConfig()
	cfg.Provider.Token = "from-file"
	cfg.ApplyEnv(env(map[string]string{EnvQiskitToken: "qiskit"}))
	assert.Equal(t, "from-file", cfg.Provider.Token)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BV.Qubits = []int{5, 0}
	cfg.BVLarge.Density = 1.5
	cfg.QV.Trials = 0
	cfg.QFT.MinQubits = 21
	cfg.Optimizer.Layout = "dense"
	cfg.Calibration.Source = "aws"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"bv.qubits", "density", "qv.trials", "qft", "optimizer.layout", "calibration.source"} {
		assert.ErrorContains(t, err, want)
	}
}
