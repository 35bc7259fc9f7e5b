// Package metrics provides Prometheus metrics for the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal counts store API calls by resource and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "upstream_requests_total",
			Help:      "Total number of store API requests",
		},
		[]string{"resource", "method", "status"},
	)

	// UpstreamDuration measures store API latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "upstream_duration_seconds",
			Help:      "Duration of store API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// ForcedLogoutsTotal counts tokens cleared after an authorization failure.
	ForcedLogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "forced_logouts_total",
			Help:      "Total number of sessions cleared after a 401 from the store API",
		},
	)

	// GuardDecisionsTotal counts route guard outcomes.
	GuardDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "guard_decisions_total",
			Help:      "Route guard outcomes by policy",
		},
		[]string{"policy", "outcome"},
	)

	// HTTPRequestsTotal counts pages served.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of storefront HTTP requests",
		},
		[]string{"route", "method", "code"},
	)
)

// RecordUpstream records one store API call.
func RecordUpstream(resource, method, status string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(resource, method, status).Inc()
	UpstreamDuration.WithLabelValues(resource).Observe(seconds)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
