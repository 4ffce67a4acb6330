package calibration

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/daryltucker/sabre-bench/internal/output"
)

// SourceLive marks data read from the device itself.
const SourceLive = "live"

// SubstitutePrefix marks data borrowed from a simulated profile: "substitute:fake_oslo".
const SubstitutePrefix = "substitute:"

// FileTimeLayout is the timestamp embedded in snapshot file names.
const FileTimeLayout = "20060102_150405"

type QubitMetrics struct {
	Qubit        int    `json:"qubit"`
	T1           Metric `json:"T1"`
	T2           Metric `json:"T2"`
	ReadoutError Metric `json:"readout_error"`
	Frequency    Metric `json:"frequency"`
}

type GateMetrics struct {
	Gate       string `json:"gate"`
	Qubits     []int  `json:"qubits"`
	ErrorRate  Metric `json:"error_rate"`
	GateLength Metric `json:"gate_length"`
}

// DeviceSnapshot is the calibration state of one device at collection time.
type DeviceSnapshot struct {
	Operational   bool           `json:"operational"`
	PendingJobs   int            `json:"pending_jobs"`
	Source        string         `json:"source"`
	Qubits        []QubitMetrics `json:"qubits"`
	TwoQubitGates []GateMetrics  `json:"two_qubit_gates"`
	LastUpdate    *time.Time     `json:"last_update"`
	CollectedAt   time.Time      `json:"collected_at"`
}

// Substituted reports whether the metrics came from a simulated stand-in.
func (d DeviceSnapshot) Substituted() bool { return d.Source != SourceLive }

// Snapshot maps device name to its calibration. Each collection produces a new
// one; nothing is merged across runs. It serializes as the bare device map.
type Snapshot struct {
	CollectedAt time.Time
	Devices     map[string]DeviceSnapshot
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.Devices == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.Devices)
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &s.Devices); err != nil {
		return err
	}
	for _, d := range s.Devices {
		if d.CollectedAt.After(s.CollectedAt) {
			s.CollectedAt = d.CollectedAt
		}
	}
	return nil
}

// FileName is "<prefix>_YYYYmmdd_HHMMSS.json" for the snapshot's collection time.
func FileName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, at.Format(FileTimeLayout))
}

// WriteSnapshot writes snap as indented JSON into dir and returns the file path.
func WriteSnapshot(dir, prefix string, snap Snapshot) (string, error) {
	path := filepath.Join(dir, FileName(prefix, snap.CollectedAt))
	f, err := output.Create(path)
	if err != nil {
		return "", err
	}
	if err := EncodeSnapshot(f, snap); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// EncodeSnapshot writes snap as JSON indented by two spaces.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadSnapshot loads a file written by WriteSnapshot.
func ReadSnapshot(path string) (Snapshot, error) {
	r, err := output.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer r.Close()
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("calibration: reading %s: %w", path, err)
	}
	return snap, nil
}
