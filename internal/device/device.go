/*
PURPOSE:
  Built-in device profiles: coupling maps and simulated calibration data for
  devices that benchmarks can target without touching the network.

REQUIREMENTS:
  - A small device with full simulated calibration (fake_oslo), used as the
    substitute data for retired hardware and as the small-count BV target.
  - Heavy-hex layouts (fake_falcon27, 127-qubit fake_washington) as routing
    targets for the QFT and quantum volume sweeps.
  - Profiles are embedded TOML so the binary is self-contained.

ARCHITECTURE INTEGRATION:
  - coupling.Parse resolves device names through Resolve.
  - calibration uses Simulator as a Source.

ERROR HANDLING:
  - Unknown names wrap ErrUnknownDevice.
  - Malformed embedded profiles are a build defect and surface from every lookup.
*/

package device

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/daryltucker/sabre-bench/internal/coupling"
	"github.com/daryltucker/sabre-bench/internal/provider"
)

//go:embed profiles/*.toml
var profileFS embed.FS

var (
	// ErrUnknownDevice is returned for names with no built-in profile.
	ErrUnknownDevice = errors.New("device: unknown device")
	// ErrRetired is returned by Simulator for profiles marked retired.
	ErrRetired = errors.New("device: backend has been retired")
)

// QubitProfile is the simulated calibration of one qubit.
type QubitProfile struct {
	Index        int     `toml:"index"`
	T1Micros     float64 `toml:"t1_us"`
	T2Micros     float64 `toml:"t2_us"`
	ReadoutError float64 `toml:"readout_error"`
	FrequencyGHz float64 `toml:"frequency_ghz"`
}

// GateProfile is the simulated calibration of one gate on specific qubits.
type GateProfile struct {
	Gate     string  `toml:"gate"`
	Qubits   []int   `toml:"qubits"`
	Error    float64 `toml:"error"`
	LengthNs float64 `toml:"length_ns"`
}

// Profiles exposes the embedded profile files by base name.
func Profiles() fs.FS {
	sub, err := fs.Sub(profileFS, "profiles")
	if err != nil {
		panic(err)
	}
	return sub
}

// Device is one embedded profile.
type Device struct {
	Name        string         `toml:"name"`
	NumQubits   int            `toml:"num_qubits"`
	Simulator   bool           `toml:"simulator"`
	Retired     bool           `toml:"retired"`
	BasisGates  []string       `toml:"basis_gates"`
	Coupling    [][]int        `toml:"coupling_map"`
	LastUpdate  string         `toml:"last_update"`
	PendingJobs int            `toml:"pending_jobs"`
	Qubits      []QubitProfile `toml:"qubits"`
	Gates       []GateProfile  `toml:"gates"`
}

var loadProfiles = sync.OnceValues(func() (map[string]*Device, error) {
	return readProfiles(profileFS, "profiles")
})

func readProfiles(fsys fs.FS, dir string) (map[string]*Device, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Device, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".toml" {
			continue
		}
		blob, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		d, err := decodeProfile(string(blob))
		if err != nil {
			return nil, fmt.Errorf("device: profile %s: %w", e.Name(), err)
		}
		out[d.Name] = d
	}
	return out, nil
}

func decodeProfile(blob string) (*Device, error) {
	d := &Device{}
	if _, err := toml.Decode(blob, d); err != nil {
		return nil, err
	}
	if d.Name == "" || d.NumQubits <= 0 {
		return nil, errors.New("name and num_qubits are required")
	}
	for _, pair := range d.Coupling {
		if len(pair) != 2 {
			return nil, fmt.Errorf("coupling entry %v is not a pair", pair)
		}
	}
	for _, q := range d.Qubits {
		if q.Index < 0 || q.Index >= d.NumQubits {
			return nil, fmt.Errorf("qubit index %d out of range", q.Index)
		}
	}
	return d, nil
}

// Lookup returns the named profile.
func Lookup(name string) (*Device, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return nil, err
	}
	d, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
	return d, nil
}

// Names lists the built-in profiles in lexical order.
func Names() []string {
	profiles, err := loadProfiles()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pairs returns the directed coupling pairs as published.
func (d *Device) Pairs() [][2]int {
	out := make([][2]int, 0, len(d.Coupling))
	for _, p := range d.Coupling {
		out = append(out, [2]int{p[0], p[1]})
	}
	return out
}

// CouplingMap returns the undirected coupling graph of the device.
func (d *Device) CouplingMap() (*coupling.Map, error) {
	return coupling.New(d.Name, d.NumQubits, d.Pairs())
}

// HasCalibration reports whether the profile carries simulated calibration data.
func (d *Device) HasCalibration() bool { return len(d.Qubits) > 0 || len(d.Gates) > 0 }

// Properties renders the simulated calibration in the provider's wire shape,
// or nil when the profile has none.
func (d *Device) Properties() *provider.Properties {
	if !d.HasCalibration() {
		return nil
	}
	p := &provider.Properties{
		BackendName:    d.Name,
		BackendVersion: "simulated",
		LastUpdateDate: d.LastUpdate,
		Qubits:         make([][]provider.Nduv, d.NumQubits),
	}
	for _, q := range d.Qubits {
		p.Qubits[q.Index] = []provider.Nduv{
			{Date: d.LastUpdate, Name: "T1", Unit: "us", Value: q.T1Micros},
			{Date: d.LastUpdate, Name: "T2", Unit: "us", Value: q.T2Micros},
			{Date: d.LastUpdate, Name: "frequency", Unit: "GHz", Value: q.FrequencyGHz},
			{Date: d.LastUpdate, Name: "readout_error", Value: q.ReadoutError},
		}
	}
	for _, g := range d.Gates {
		p.Gates = append(p.Gates, provider.GateProperties{
			Gate:   g.Gate,
			Name:   gateName(g),
			Qubits: slices.Clone(g.Qubits),
			Parameters: []provider.Nduv{
				{Date: d.LastUpdate, Name: "gate_error", Value: g.Error},
				{Date: d.LastUpdate, Name: "gate_length", Unit: "ns", Value: g.LengthNs},
			},
		})
	}
	return p
}

// gateName follows the provider's naming: sx0, cx0_1.
func gateName(g GateProfile) string {
	idx := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		idx[i] = strconv.Itoa(q)
	}
	return g.Gate + strings.Join(idx, "_")
}

// Resolve adapts Lookup to coupling.Parse.
func Resolve(name string) (*coupling.Map, error) {
	d, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return d.CouplingMap()
}
