// Package metrics exports store operation outcomes to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts and times store operations on a private registry.
// It satisfies state.Recorder.
type Recorder struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the store collectors plus the Go runtime collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nixtrack",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Settled store operations by entity, operation and outcome.",
		}, []string{"entity", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nixtrack",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency including the API round trip.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"entity", "operation"}),
	}
	r.registry.MustRegister(
		r.total,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one settled operation.
func (r *Recorder) Observe(entity, op, outcome string, elapsed time.Duration) {
	r.total.WithLabelValues(entity, op, outcome).Inc()
	r.duration.WithLabelValues(entity, op).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
