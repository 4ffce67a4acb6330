/*
PURPOSE:
  Defines the configuration structure and loading logic for sabre-bench.
  Every sweep range, coupling map, output name and provider setting that
  used to be a constant lives here, with those constants as defaults.

REQUIREMENTS:
  User-specified:
  - Qubit ranges, circuits per size, QV depths and trials, QFT bounds.
  - Calibration: backend filter, 2q gate names, substitute device, file prefix.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Environment overrides (SABRE_BENCH_*, QISKIT_IBM_TOKEN) for secrets and paths.
  - The token never lives in ambient provider state; it is read here and
    handed to provider.Dial explicitly.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/calibration wiring
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default file is not an error; an explicitly named one is.
  - Validate() reports every bad range at once.

USAGE:
  cfg, err := config.Load("sabre_bench.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and DefaultConfig().

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new sweep parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFiles are searched, in order, when no --config is given.
var DefaultFiles = []string{"sabre_bench.yaml", "sabre-bench.yaml", "bench.yaml"}

// Environment variables read by ApplyEnv.
const (
	EnvToken       = "SABRE_BENCH_TOKEN"
	EnvQiskitToken = "QISKIT_IBM_TOKEN"
	EnvAPIURL      = "SABRE_BENCH_API_URL"
	EnvOutputDir   = "SABRE_BENCH_OUTPUT_DIR"
	EnvRedisAddr   = "SABRE_BENCH_REDIS_ADDR"
)

// Config represents the full configuration for sabre-bench.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// Seed drives hidden strings, layouts and trial seeds. 0 picks one from the clock.
	Seed int64 `yaml:"seed"`
	// MetricsFile, when set, receives the sweep's Prometheus metrics in text format.
	MetricsFile string `yaml:"metrics_file"`

	Optimizer   OptimizerConfig   `yaml:"optimizer"`
	BV          BVConfig          `yaml:"bv"`
	BVLarge     BVLargeConfig     `yaml:"bv_large"`
	QFT         QFTConfig         `yaml:"qft"`
	QV          QVConfig          `yaml:"qv"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Provider    ProviderConfig    `yaml:"provider"`
	Redis       RedisConfig       `yaml:"redis"`
}

// OptimizerConfig selects the routing optimizer.
type OptimizerConfig struct {
	// Layout is sabre, random or trivial.
	Layout           string `yaml:"layout"`
	LayoutIterations int    `yaml:"layout_iterations"`
	// Command runs an external optimizer (QASM on stdin/stdout) instead of the built-in one.
	Command []string `yaml:"command"`
}

type BVConfig struct {
	Qubits          []int  `yaml:"qubits"`
	CircuitsPerSize int    `yaml:"circuits_per_size"`
	Coupling        string `yaml:"coupling"`
	OutputFile      string `yaml:"output_file"`
	Format          string `yaml:"format"`
}

type BVLargeConfig struct {
	SmallQubits   []int   `yaml:"small_qubits"`
	LargeQubits   []int   `yaml:"large_qubits"`
	Density       float64 `yaml:"density"`
	SmallCoupling string  `yaml:"small_coupling"`
	AvgDistance   float64 `yaml:"avg_distance"`
	MaxIterations int     `yaml:"max_iterations"`
	// Filler is the rows, inner and columns of the synthetic timing product.
	Filler     [3]int `yaml:"filler"`
	OutputFile string `yaml:"output_file"`
	Format     string `yaml:"format"`
}

type QFTConfig struct {
	MinQubits  int    `yaml:"min_qubits"`
	MaxQubits  int    `yaml:"max_qubits"`
	Coupling   string `yaml:"coupling"`
	OutputFile string `yaml:"output_file"`
	Format     string `yaml:"format"`
}

type QVConfig struct {
	Qubits            []int  `yaml:"qubits"`
	Depths            []int  `yaml:"depths"`
	CircuitsPerConfig int    `yaml:"circuits_per_config"`
	Trials            int    `yaml:"trials"`
	Coupling          string `yaml:"coupling"`
	OutputFile        string `yaml:"output_file"`
	Format            string `yaml:"format"`
}

type CalibrationConfig struct {
	// Source is "ibm" for the remote provider or "simulator" for the built-in profiles.
	Source string `yaml:"source"`
	// Backends limits collection to these names; empty means every visible backend.
	Backends         []string `yaml:"backends"`
	TwoQubitGates    []string `yaml:"two_qubit_gates"`
	SubstituteDevice string   `yaml:"substitute_device"`
	FilePrefix       string   `yaml:"file_prefix"`
}

type ProviderConfig struct {
	APIURL   string `yaml:"api_url"`
	Token    string `yaml:"token"`
	Instance string `yaml:"instance"`
	// Timeout of 0 leaves requests unbounded.
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// RedisConfig enables the calibration snapshot mirror when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: ".",
		LogLevel:  "info",
		LogFormat: "text",
		Optimizer: OptimizerConfig{
			Layout:           "sabre",
			LayoutIterations: 3,
		},
		BV: BVConfig{
			Qubits:          []int{5, 10, 15, 20, 25, 30, 35, 40, 45, 50},
			CircuitsPerSize: 5,
			Coupling:        "fake_washington",
			OutputFile:      "bv_benchmark_results.txt",
		},
		BVLarge: BVLargeConfig{
			SmallQubits:   []int{5, 10, 20},
			LargeQubits:   []int{1000, 5000, 10000, 15000, 19998},
			Density:       0.1,
			SmallCoupling: "strided:50:5",
			AvgDistance:   2,
			MaxIterations: 1000,
			Filler:        [3]int{1000, 1000, 10},
			OutputFile:    "bv_large_benchmark_results.txt",
		},
		QFT: QFTConfig{
			MinQubits:  10,
			MaxQubits:  20,
			Coupling:   "fake_washington",
			OutputFile: "qft_benchmark_results.txt",
		},
		QV: QVConfig{
			Qubits:            []int{10, 15, 20, 25, 30},
			Depths:            []int{10, 15, 20, 25},
			CircuitsPerConfig: 10,
			Trials:            1,
			Coupling:          "fake_washington",
			OutputFile:        "qv_benchmark_results.txt",
		},
		Calibration: CalibrationConfig{
			Source:           "ibm",
			TwoQubitGates:    []string{"cx", "ecr", "cz"},
			SubstituteDevice: "fake_oslo",
			FilePrefix:       "ibm_errors",
		},
		Provider: ProviderConfig{
			Retries:    1,
			RetryDelay: 2 * time.Second,
		},
		Redis: RedisConfig{
			Prefix: "sabre-bench:calibration",
			TTL:    24 * time.Hour,
		},
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			cfg.ApplyEnv(os.Getenv)
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overlays environment settings. getenv is os.Getenv outside tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if tok := getenv(EnvToken); tok != "" {
		c.Provider.Token = tok
	} else if tok := getenv(EnvQiskitToken); tok != "" && c.Provider.Token == "" {
		c.Provider.Token = tok
	}
	if u := getenv(EnvAPIURL); u != "" {
		c.Provider.APIURL = u
	}
	if d := getenv(EnvOutputDir); d != "" {
		c.OutputDir = d
	}
	if a := getenv(EnvRedisAddr); a != "" {
		c.Redis.Addr = a
	}
}

// Validate reports every malformed setting.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	positive := func(name string, xs []int) {
		for _, x := range xs {
			if x <= 0 {
				bad("%s: qubit counts must be positive, got %d", name, x)
			}
		}
	}
	positive("bv.qubits", c.BV.Qubits)
	positive("bv_large.small_qubits", c.BVLarge.SmallQubits)
	positive("bv_large.large_qubits", c.BVLarge.LargeQubits)
	positive("qv.qubits", c.QV.Qubits)
	for _, d := range c.QV.Depths {
		if d <= 0 {
			bad("qv.depths: depth must be positive, got %d", d)
		}
	}

	if c.BV.CircuitsPerSize < 1 {
		bad("bv.circuits_per_size must be at least 1")
	}
	if c.QV.CircuitsPerConfig < 1 {
		bad("qv.circuits_per_config must be at least 1")
	}
	if c.QV.Trials < 1 {
		bad("qv.trials must be at least 1")
	}
	if c.BVLarge.Density < 0 || c.BVLarge.Density > 1 {
		bad("bv_large.density must be within [0, 1], got %g", c.BVLarge.Density)
	}
	if c.BVLarge.AvgDistance < 0 {
		bad("bv_large.avg_distance must not be negative")
	}
	if c.QFT.MinQubits < 1 || c.QFT.MinQubits > c.QFT.MaxQubits {
		bad("qft: need 1 <= min_qubits <= max_qubits, got %d..%d", c.QFT.MinQubits, c.QFT.MaxQubits)
	}

	switch strings.ToLower(c.Optimizer.Layout) {
	case "sabre", "random", "trivial":
	default:
		bad("optimizer.layout must be sabre, random or trivial, got %q", c.Optimizer.Layout)
	}
	switch c.Calibration.Source {
	case "ibm", "simulator":
	default:
		bad("calibration.source must be ibm or simulator, got %q", c.Calibration.Source)
	}
	if c.Provider.Retries < 0 {
		bad("provider.retries must not be negative")
	}
	if c.Provider.Timeout < 0 {
		bad("provider.timeout must not be negative")
	}
	return errors.Join(errs...)
}
