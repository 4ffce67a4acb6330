package engine

import (
	"github.com/daryltucker/sabre-bench/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sabre_bench"

// Metrics counts routed, estimated and skipped circuits and tracks SWAP and
// timing distributions per benchmark. Each Engine has its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	circuits      *prometheus.CounterVec
	swaps         *prometheus.HistogramVec
	routeSeconds  *prometheus.HistogramVec
	depthIncrease *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		circuits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "circuits_total",
				Help:      "Circuits handled by a sweep",
			},
			[]string{"benchmark", "status"}, // status: "routed", "estimated", "skipped"
		),
		swaps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "swap_count",
				Help:      "SWAP gates inserted per circuit, measured or estimated",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
			},
			[]string{"benchmark"},
		),
		routeSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "transpile_duration_seconds",
				Help:      "Wall-clock time spent routing one circuit",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"benchmark"},
		),
		depthIncrease: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "depth_increase",
				Help:      "Transpiled depth minus original depth",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
			},
			[]string{"benchmark"},
		),
	}
	m.Registry.MustRegister(m.circuits, m.swaps, m.routeSeconds, m.depthIncrease)
	return m
}

func (m *Metrics) observe(r model.Record) {
	bench := string(r.Benchmark)
	status := "routed"
	if r.Estimated {
		status = "estimated"
	}
	m.circuits.WithLabelValues(bench, status).Inc()
	m.swaps.WithLabelValues(bench).Observe(float64(r.SwapCount))
	m.depthIncrease.WithLabelValues(bench).Observe(float64(r.DepthIncrease()))
	if !r.Estimated {
		m.routeSeconds.WithLabelValues(bench).Observe(r.TranspileTime.Seconds())
	}
}

func (m *Metrics) skipped(bench model.Benchmark) {
	m.circuits.WithLabelValues(string(bench), "skipped").Inc()
}

// WriteTextfile writes every metric in the Prometheus text format, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
