// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safetynet/alerts/internal/platform/apierror"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	UpdateOutcomes *prometheus.CounterVec
	AlertCacheHits prometheus.Counter
	AlertCacheMiss prometheus.Counter
	SeededEntities *prometheus.CounterVec
}

// New creates the collectors on a private registry, so several instances can
// coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safetynet_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "safetynet_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		UpdateOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safetynet_update_outcomes_total",
			Help: "Create, update and delete outcomes by resource",
		}, []string{"resource", "outcome"}),
		AlertCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "safetynet_alert_cache_hits_total",
			Help: "Alert responses served from the cache",
		}),
		AlertCacheMiss: f.NewCounter(prometheus.CounterOpts{
			Name: "safetynet_alert_cache_misses_total",
			Help: "Alert responses computed from storage",
		}),
		SeededEntities: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safetynet_seeded_entities_total",
			Help: "Entities inserted by the JSON seed loader",
		}, []string{"entity"}),
	}
}

// ObserveOutcome records the result of a mutating operation, e.g.
// ("person", "created") or ("firestation", "ImmutableAddress").
func (m *Metrics) ObserveOutcome(resource, outcome string) {
	if m == nil {
		return
	}
	m.UpdateOutcomes.WithLabelValues(resource, outcome).Inc()
}

// ObserveResult records success when err is nil, otherwise the business
// failure kind, or "error" for anything else.
func (m *Metrics) ObserveResult(resource, success string, err error) {
	outcome := success
	if err != nil {
		outcome = "error"
		if k := apierror.KindOf(err); k != 0 {
			outcome = k.String()
		}
	}
	m.ObserveOutcome(resource, outcome)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
