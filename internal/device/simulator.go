package device

import (
	"context"
	"fmt"

	"github.com/daryltucker/sabre-bench/internal/provider"
)

// Simulator serves the embedded profiles through the same calls the remote
// provider answers. Retired profiles fail every per-backend call with ErrRetired.
type Simulator struct {
	// Only restricts Backends to these names when non-empty.
	Only []string
}

// NewSimulator returns a Simulator over every embedded profile.
func NewSimulator() *Simulator { return &Simulator{} }

// Backends lists the profiles this simulator serves.
func (s *Simulator) Backends(ctx context.Context) ([]string, error) {
	if _, err := loadProfiles(); err != nil {
		return nil, err
	}
	if len(s.Only) > 0 {
		return append([]string(nil), s.Only...), nil
	}
	return Names(), nil
}

func (s *Simulator) live(ctx context.Context, name string) (*Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if d.Retired {
		return nil, fmt.Errorf("%w: %s", ErrRetired, name)
	}
	return d, nil
}

func (s *Simulator) Status(ctx context.Context, name string) (provider.Status, error) {
	d, err := s.live(ctx, name)
	if err != nil {
		return provider.Status{}, err
	}
	return provider.Status{
		BackendName:   d.Name,
		Operational:   true,
		StatusMessage: "active",
		PendingJobs:   d.PendingJobs,
	}, nil
}

func (s *Simulator) Configuration(ctx context.Context, name string) (provider.Configuration, error) {
	d, err := s.live(ctx, name)
	if err != nil {
		return provider.Configuration{}, err
	}
	return provider.Configuration{
		BackendName: d.Name,
		NumQubits:   d.NumQubits,
		CouplingMap: d.Pairs(),
		BasisGates:  append([]string(nil), d.BasisGates...),
		Simulator:   d.Simulator,
	}, nil
}

// Properties returns the profile's simulated calibration, nil when it has none.
func (s *Simulator) Properties(ctx context.Context, name string) (*provider.Properties, error) {
	d, err := s.live(ctx, name)
	if err != nil {
		return nil, err
	}
	return d.Properties(), nil
}

// Substitute returns a profile's calibration regardless of its retired flag.
// It is the stand-in data used when real hardware has been decommissioned.
func (s *Simulator) Substitute(name string) (*provider.Properties, error) {
	d, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	p := d.Properties()
	if p == nil {
		return nil, fmt.Errorf("device: %s has no simulated calibration", name)
	}
	return p, nil
}
