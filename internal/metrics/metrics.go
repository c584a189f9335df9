package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/3-lines-studio/sassbuild/internal/core"
)

const (
	PhaseSource   = "source"
	PhaseCompiled = "compiled"
)

// Metrics groups the render collectors. They are registered on the
// Registerer given to New; a nil Registerer leaves them unregistered.
type Metrics struct {
	RenderCount       prometheus.Counter
	RenderFailed      *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	Dependencies      *prometheus.CounterVec
	DuplicateImports  prometheus.Counter
	RebasedReferences prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RenderCount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sassbuild_render_count_total",
				Help: "Total number of render operations",
			},
		),
		RenderFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sassbuild_render_failed_total",
				Help: "Total number of failed render operations",
			},
			[]string{"reason"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sassbuild_render_duration_seconds",
				Help:    "Render duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		Dependencies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sassbuild_dependencies_total",
				Help: "Dependencies reported by renders, by scan phase and status",
			},
			[]string{"phase", "status"},
		),
		DuplicateImports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sassbuild_duplicate_imports_total",
				Help: "Imports skipped because the file was already included in the render",
			},
		),
		RebasedReferences: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sassbuild_rebased_references_total",
				Help: "url() references rewritten relative to the output",
			},
		),
	}
}

func (m *Metrics) ObserveRender(start time.Time, reason string) {
	outcome := "success"
	if reason != "" {
		outcome = "failure"
		m.RenderFailed.WithLabelValues(reason).Inc()
	}
	m.RenderCount.Inc()
	m.RenderDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveDependencies(phase string, deps []core.Dependency) {
	resolved, missing := core.CountByStatus(deps)
	m.Dependencies.WithLabelValues(phase, core.StatusResolved.String()).Add(float64(resolved))
	m.Dependencies.WithLabelValues(phase, core.StatusMissing.String()).Add(float64(missing))
}
