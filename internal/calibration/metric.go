package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/daryltucker/sabre-bench/internal/provider"
)

// NotAvailable is the serialized form of any metric without a value.
const NotAvailable = "N/A"

// MetricStatus says whether a metric carries a value and why not.
type MetricStatus int

const (
	// MetricOK carries a value.
	MetricOK MetricStatus = iota
	// MetricDegraded means the backend did not publish the value.
	MetricDegraded
	// MetricFailed means the value was published but could not be read.
	MetricFailed
)

func (s MetricStatus) String() string {
	switch s {
	case MetricOK:
		return "ok"
	case MetricDegraded:
		return "degraded"
	case MetricFailed:
		return "failed"
	}
	return "unknown"
}

// Metric is one calibration figure. It serializes as "%.2e" or "N/A".
type Metric struct {
	Value  float64
	Status MetricStatus
	Reason string
}

// Measured wraps a value read without error.
func Measured(v float64) Metric { return Metric{Value: v} }

// FromResult classifies a provider accessor result.
func FromResult(v float64, err error) Metric {
	switch {
	case err == nil:
		return Measured(v)
	case errors.Is(err, provider.ErrPropertyMissing):
		return Metric{Status: MetricDegraded, Reason: err.Error()}
	default:
		return Metric{Status: MetricFailed, Reason: err.Error()}
	}
}

func (m Metric) OK() bool { return m.Status == MetricOK }

func (m Metric) String() string {
	if !m.OK() {
		return NotAvailable
	}
	return fmt.Sprintf("%.2e", m.Value)
}

// Format renders the value with verb, or N/A.
func (m Metric) Format(verb string) string {
	if !m.OK() {
		return NotAvailable
	}
	return fmt.Sprintf(verb, m.Value)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON reads back a serialized metric. Precision is what "%.2e" kept.
func (m *Metric) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == NotAvailable {
		*m = Metric{Status: MetricDegraded}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("calibration: bad metric %q", s)
	}
	*m = Measured(v)
	return nil
}
