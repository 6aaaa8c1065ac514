package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the planner's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RecomputesTotal     *prometheus.CounterVec
	GuardrailFailures   *prometheus.CounterVec
	FixesSuggested      prometheus.Counter
	PlansTotal          *prometheus.CounterVec
}

// DefaultHTTPDurationBuckets are the latency buckets for API requests.
var DefaultHTTPDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planner",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"route"}),
		RecomputesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "recomputes_total",
			Help:      "Recomputes by outcome (passed, failed, error).",
		}, []string{"outcome"}),
		GuardrailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "guardrail_failures_total",
			Help:      "Failed guardrail tests by type.",
		}, []string{"type"}),
		FixesSuggested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "fixes_suggested_total",
			Help:      "Suggested fixes returned to callers.",
		}),
		PlansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planner",
			Name:      "plans_total",
			Help:      "Plans computed by trigger.",
		}, []string{"trigger"}),
	}
	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.RecomputesTotal,
		m.GuardrailFailures, m.FixesSuggested, m.PlansTotal)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
