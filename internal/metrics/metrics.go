// Package metrics provides Prometheus metrics for the guide server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rahul4469/toplane-guide/internal/models"
)

const namespace = "toplane"

// Recorder owns a private registry and every collector of the service.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	upstreamCalls        *prometheus.CounterVec
	upstreamCallDuration *prometheus.HistogramVec

	displayTransitions *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Calls to the analysis service, by call and outcome.",
		}, []string{"call", "outcome"}),
		upstreamCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Analysis service latency. Analyses can take minutes.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"call"}),
		displayTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "display",
			Name:      "transitions_total",
			Help:      "Display slot transitions, by target phase.",
		}, []string{"phase"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpRequestDuration,
		r.upstreamCalls,
		r.upstreamCallDuration,
		r.displayTransitions,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(route, method, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveUpstream records one call to the analysis service.
func (r *Recorder) ObserveUpstream(call, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upstreamCalls.WithLabelValues(call, outcome).Inc()
	r.upstreamCallDuration.WithLabelValues(call).Observe(elapsed.Seconds())
}

// ObserveTransition records a display slot moving to phase.
func (r *Recorder) ObserveTransition(phase models.DisplayPhase) {
	if r == nil {
		return
	}
	r.displayTransitions.WithLabelValues(string(phase)).Inc()
}
