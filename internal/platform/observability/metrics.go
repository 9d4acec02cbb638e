package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "alkitab"

// Metrics owns the prometheus registry exposed on /metrics.
type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	lookups          *prometheus.CounterVec
	authChecks       *prometheus.CounterVec
}

// NewMetrics registers the service collectors on a fresh registry, together
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_requests_total",
			Help:      "Fetches against the content source, by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Content source fetch latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lookups_total",
			Help:      "Completed find and read operations, by kind and result.",
		}, []string{"kind", "result"}),
		authChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auth_verifications_total",
			Help:      "Access key verifications, by result and reason.",
		}, []string{"kind", "result", "reason"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.upstreamRequests,
		m.upstreamDuration,
		m.lookups,
		m.authChecks,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUpstream records one fetch against the content source.
func (m *Metrics) ObserveUpstream(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	m.upstreamDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveLookup counts a finished find or read.
func (m *Metrics) ObserveLookup(kind, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(kind, result).Inc()
}

// RecordVerification counts one credential check.
func (m *Metrics) RecordVerification(kind string, success bool, reason string) {
	if m == nil {
		return
	}
	result := "rejected"
	if success {
		result = "accepted"
	}
	m.authChecks.WithLabelValues(kind, result, reason).Inc()
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := newResponseRecorder(w)
		start := time.Now()
		next.ServeHTTP(recorder, r)

		route := SanitizeRoute(routePattern(r))
		method := SanitizeMethod(r.Method)
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(recorder.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}
