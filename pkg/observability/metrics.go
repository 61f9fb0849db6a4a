package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records build outcomes on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	builds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	slices   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventmodel_builds_total",
				Help: "Total number of slice builds by outcome",
			},
			[]string{"model", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventmodel_build_duration_seconds",
				Help:    "Duration of load and build of a model",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"model"},
		),
		slices: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eventmodel_slices",
				Help: "Number of slices in the last successful build",
			},
			[]string{"model"},
		),
	}
	m.registry.MustRegister(m.builds, m.duration, m.slices)
	return m
}

// Registry exposes the underlying registry, e.g. for tests or extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns build hooks feeding the collectors.
func (m *Metrics) Hooks() domain.BuildHooks {
	return domain.BuildHooks{
		OnBuild: func(ctx context.Context, e *domain.BuildEvent) {
			m.builds.WithLabelValues(e.ModelID, "ok").Inc()
			m.duration.WithLabelValues(e.ModelID).Observe(e.Duration.Seconds())
			m.slices.WithLabelValues(e.ModelID).Set(float64(e.Slices))
		},
		OnError: func(ctx context.Context, e *domain.BuildEvent) {
			m.builds.WithLabelValues(e.ModelID, "error").Inc()
		},
	}
}

// LogHooks returns build hooks writing one record per lifecycle step.
func LogHooks(logger *slog.Logger) domain.BuildHooks {
	return domain.BuildHooks{
		OnLoad: func(ctx context.Context, e *domain.BuildEvent) {
			logger.DebugContext(ctx, "model_loaded", "model", e.ModelID, "elements", e.Elements)
		},
		OnBuild: func(ctx context.Context, e *domain.BuildEvent) {
			logger.InfoContext(ctx, "slices_built",
				"model", e.ModelID,
				"slices", e.Slices,
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, e *domain.BuildEvent) {
			logger.ErrorContext(ctx, "build_failed", "model", e.ModelID, "err", e.Err)
		},
	}
}
