package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/algo-vose/voice/render"
)

// Metrics records render outcomes on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	renders       *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	audioSeconds  prometheus.Counter
	notes         prometheus.Counter
	clipped       prometheus.Counter
}

// NewMetrics registers the render metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vose_renders_total",
			Help: "Total number of render calls",
		}, []string{"op", "status"}),
		renderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vose_render_duration_seconds",
			Help:    "Wall-clock time spent per render call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vose_render_errors_total",
			Help: "Total number of failed renders by error kind",
		}, []string{"kind"}),
		audioSeconds: f.NewCounter(prometheus.CounterOpts{
			Name: "vose_rendered_audio_seconds_total",
			Help: "Seconds of audio rendered",
		}),
		notes: f.NewCounter(prometheus.CounterOpts{
			Name: "vose_rendered_notes_total",
			Help: "Notes that produced audio",
		}),
		clipped: f.NewCounter(prometheus.CounterOpts{
			Name: "vose_clipped_samples_total",
			Help: "Rendered samples outside [-1, 1]",
		}),
	}
}

// ObserveRender implements engine.Metrics.
func (m *Metrics) ObserveRender(op string, elapsed time.Duration, rep render.Report, err error) {
	m.renderLatency.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.renders.WithLabelValues(op, "error").Inc()
		m.errors.WithLabelValues(render.KindOf(err).String()).Inc()
		return
	}
	m.renders.WithLabelValues(op, "success").Inc()
	m.audioSeconds.Add(rep.Seconds)
	m.notes.Add(float64(rep.Notes))
	m.clipped.Add(float64(rep.Clipped))
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
