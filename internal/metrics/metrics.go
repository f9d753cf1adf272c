package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

const namespace = "metalaw"

// Metrics is a synthesis.Observer that exports prediction counters and a
// capacity histogram.
type Metrics struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	rejected    prometheus.Counter
	capacity    *prometheus.HistogramVec
}

var _ synthesis.Observer = (*Metrics)(nil)

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions by universality class and emergence flag.",
		}, []string{"class", "emergent"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_inputs_total",
			Help:      "Inputs rejected for a coordinate outside [0, 1].",
		}),
		capacity: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capacity",
			Help:      "Capacity S*D*M of accepted inputs.",
			// Spans the class thresholds (0.003 to 0.010) and the upper range.
			Buckets: []float64{0.001, 0.003, 0.005, 0.007, 0.01, 0.03, 0.1, 0.3, 1},
		}, []string{"class"}),
	}
	reg.MustRegister(m.predictions, m.rejected, m.capacity)
	return m
}

// Observed implements synthesis.Observer.
func (m *Metrics) Observed(r synthesis.Result) {
	c := string(r.UniversalityClass)
	m.predictions.WithLabelValues(c, strconv.FormatBool(r.Emergent)).Inc()
	m.capacity.WithLabelValues(c).Observe(r.Capacity)
}

// Rejected implements synthesis.Observer.
func (m *Metrics) Rejected(synthesis.Input, error) {
	m.rejected.Inc()
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
