package provider

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status is a backend's operational state and queue length.
type Status struct {
	BackendName   string `json:"backend_name,omitempty"`
	Operational   bool   `json:"state"`
	StatusMessage string `json:"status,omitempty"`
	Message       string `json:"message,omitempty"`
	PendingJobs   int    `json:"length_queue"`
}

// Configuration is the static description of a backend.
type Configuration struct {
	BackendName string   `json:"backend_name"`
	NumQubits   int      `json:"n_qubits"`
	CouplingMap [][2]int `json:"coupling_map,omitempty"`
	BasisGates  []string `json:"basis_gates,omitempty"`
	Simulator   bool     `json:"simulator,omitempty"`
}

// Nduv is a named, dated, unit-carrying value.
type Nduv struct {
	Date  string  `json:"date,omitempty"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit,omitempty"`
	Value float64 `json:"value"`
}

// GateProperties carries the calibration parameters of one gate on specific qubits.
type GateProperties struct {
	Gate       string `json:"gate"`
	Name       string `json:"name,omitempty"`
	Qubits     []int  `json:"qubits"`
	Parameters []Nduv `json:"parameters"`
}

// Param returns the named parameter.
func (g GateProperties) Param(name string) (Nduv, bool) {
	for _, p := range g.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Nduv{}, false
}

// Properties is a backend's latest calibration.
type Properties struct {
	BackendName    string           `json:"backend_name"`
	BackendVersion string           `json:"backend_version,omitempty"`
	LastUpdateDate string           `json:"last_update_date,omitempty"`
	Qubits         [][]Nduv         `json:"qubits"`
	Gates          []GateProperties `json:"gates"`
	General        []Nduv           `json:"general,omitempty"`
}

// NumQubits is the number of qubits with published properties.
func (p *Properties) NumQubits() int { return len(p.Qubits) }

// LastUpdate parses LastUpdateDate.
func (p *Properties) LastUpdate() (time.Time, error) {
	if p.LastUpdateDate == "" {
		return time.Time{}, fmt.Errorf("%w: last_update_date", ErrPropertyMissing)
	}
	return time.Parse(time.RFC3339, p.LastUpdateDate)
}

func (p *Properties) qubitParam(q int, name string) (Nduv, error) {
	if q < 0 || q >= len(p.Qubits) {
		return Nduv{}, fmt.Errorf("%w: qubit %d has no properties", ErrPropertyMissing, q)
	}
	for _, v := range p.Qubits[q] {
		if v.Name == name {
			return v, nil
		}
	}
	return Nduv{}, fmt.Errorf("%w: %s on qubit %d", ErrPropertyMissing, name, q)
}

// T1 returns the energy-relaxation time of q in seconds.
func (p *Properties) T1(q int) (float64, error) { return p.timeParam(q, "T1") }

// T2 returns the dephasing time of q in seconds.
func (p *Properties) T2(q int) (float64, error) { return p.timeParam(q, "T2") }

// ReadoutError returns the measurement misclassification probability of q.
func (p *Properties) ReadoutError(q int) (float64, error) {
	v, err := p.qubitParam(q, "readout_error")
	return v.Value, err
}

// Frequency returns the drive frequency of q in Hz.
func (p *Properties) Frequency(q int) (float64, error) {
	v, err := p.qubitParam(q, "frequency")
	if err != nil {
		return 0, err
	}
	return toHertz(v)
}

func (p *Properties) timeParam(q int, name string) (float64, error) {
	v, err := p.qubitParam(q, name)
	if err != nil {
		return 0, err
	}
	return toSeconds(v)
}

func (p *Properties) gate(name string, qubits []int) (GateProperties, error) {
	for _, g := range p.Gates {
		if g.Gate == name && slices.Equal(g.Qubits, qubits) {
			return g, nil
		}
	}
	return GateProperties{}, fmt.Errorf("%w: gate %s%v", ErrPropertyMissing, name, qubits)
}

// GateError returns the error rate of gate on qubits.
func (p *Properties) GateError(gate string, qubits []int) (float64, error) {
	g, err := p.gate(gate, qubits)
	if err != nil {
		return 0, err
	}
	v, ok := g.Param("gate_error")
	if !ok {
		return 0, fmt.Errorf("%w: gate_error of %s%v", ErrPropertyMissing, gate, qubits)
	}
	return v.Value, nil
}

// GateLength returns the duration of gate on qubits in seconds.
func (p *Properties) GateLength(gate string, qubits []int) (float64, error) {
	g, err := p.gate(gate, qubits)
	if err != nil {
		return 0, err
	}
	v, ok := g.Param("gate_length")
	if !ok {
		return 0, fmt.Errorf("%w: gate_length of %s%v", ErrPropertyMissing, gate, qubits)
	}
	return toSeconds(v)
}

// GatesNamed returns the gates whose name is in names, in published order.
func (p *Properties) GatesNamed(names ...string) []GateProperties {
	var out []GateProperties
	for _, g := range p.Gates {
		if slices.Contains(names, g.Gate) {
			out = append(out, g)
		}
	}
	return out
}

func toSeconds(v Nduv) (float64, error) {
	switch strings.TrimSpace(v.Unit) {
	case "s", "":
		return v.Value, nil
	case "ms":
		return v.Value * 1e-3, nil
	case "us", "µs":
		return v.Value * 1e-6, nil
	case "ns":
		return v.Value * 1e-9, nil
	}
	return 0, fmt.Errorf("%w: %q for %s", ErrUnknownUnit, v.Unit, v.Name)
}

func toHertz(v Nduv) (float64, error) {
	switch strings.TrimSpace(v.Unit) {
	case "Hz", "":
		return v.Value, nil
	case "kHz":
		return v.Value * 1e3, nil
	case "MHz":
		return v.Value * 1e6, nil
	case "GHz":
		return v.Value * 1e9, nil
	}
	return 0, fmt.Errorf("%w: %q for %s", ErrUnknownUnit, v.Unit, v.Name)
}
