package core

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-run counters for import runs. Each instance owns its
// registry so that several engines (and tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	diagnostics  *prometheus.CounterVec
	partsBound   prometheus.Counter
	controlBones prometheus.Gauge
	runDuration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mechrig",
			Name:      "runs_total",
			Help:      "Import runs by terminal stage.",
		}, []string{"stage"}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mechrig",
			Name:      "diagnostics_total",
			Help:      "Diagnostics recorded by kind.",
		}, []string{"kind"}),
		partsBound: f.NewCounter(prometheus.CounterOpts{
			Namespace: "mechrig",
			Name:      "parts_bound_total",
			Help:      "Geometry parts bound to a skeleton bone.",
		}),
		controlBones: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "mechrig",
			Name:      "control_bones",
			Help:      "Control bones present after the last run.",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mechrig",
			Name:      "run_duration_seconds",
			Help:      "Wall time of an import run.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

// RunSample is what one run contributes to the metrics.
type RunSample struct {
	Stage        string
	Duration     time.Duration
	Diagnostics  Diagnostics
	PartsBound   int
	ControlBones int
}

func (m *Metrics) ObserveRun(s RunSample) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(s.Stage).Inc()
	for _, d := range s.Diagnostics {
		m.diagnostics.WithLabelValues(KindLabel(d.Kind)).Inc()
	}
	m.partsBound.Add(float64(s.PartsBound))
	m.controlBones.Set(float64(s.ControlBones))
	m.runDuration.Observe(s.Duration.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// KindLabel turns a sentinel into a metric label, "missing bone" -> "missing_bone".
func KindLabel(kind error) string {
	if kind == nil {
		return "unknown"
	}
	return strings.ReplaceAll(kind.Error(), " ", "_")
}
