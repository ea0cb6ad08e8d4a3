// Package metrics exposes prometheus instrumentation for analyses and
// the analysis pool.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	labelComponent = "component"
	labelOutcome   = "outcome"
)

// Analysis outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
)

// Metrics holds the seoscan collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	componentDuration *prometheus.SummaryVec
	analyses          *prometheus.CounterVec
	rejected          prometheus.Counter
	queueDepth        prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		componentDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "seoscan_analysis_component_duration_seconds",
				Help:       "duration of one analysis component",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{labelComponent},
		),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoscan_analyses_total",
				Help: "number of scan analyses by outcome",
			},
			[]string{labelOutcome},
		),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seoscan_pool_rejected_total",
			Help: "analysis requests rejected because the queue was full",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seoscan_pool_queue_depth",
			Help: "analysis requests waiting for a worker",
		}),
	}

	m.registry.MustRegister(
		m.componentDuration,
		m.analyses,
		m.rejected,
		m.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveComponent records the duration of an analysis component.
func (m *Metrics) ObserveComponent(component string, d time.Duration) {
	m.componentDuration.WithLabelValues(component).Observe(d.Seconds())
}

// AnalysisFinished counts one analysis with the given outcome.
func (m *Metrics) AnalysisFinished(outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
}

// QueueDepth sets the number of waiting analysis requests.
func (m *Metrics) QueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// Rejected counts a request refused by the pool.
func (m *Metrics) Rejected() {
	m.rejected.Inc()
	m.analyses.WithLabelValues(OutcomeRejected).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
