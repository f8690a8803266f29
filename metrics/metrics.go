// Package metrics provides Prometheus metrics for the HTTP server and the interaction engine.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Engine metrics cover catalog loads, the classification cache and the
// external collaborators. All metrics are registered with the Prometheus
// default registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since last cleanup)",
		},
	)

	CatalogDrugs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_drugs",
			Help: "Canonical drug names in the loaded catalog",
		},
	)

	CatalogFacts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_facts",
			Help: "Interaction facts in the loaded catalog",
		},
	)

	CatalogLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Time to parse and index the catalog",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	CatalogLoadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_load_errors_total",
			Help: "Failed catalog loads by kind (unavailable, malformed)",
		},
		[]string{"kind"},
	)

	ClassificationCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_cache_requests_total",
			Help: "Classification cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	ClassificationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_failures_total",
			Help: "Classifications that fell back to the default severity, by kind",
		},
		[]string{"kind"},
	)

	TranslationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "translation_failures_total",
			Help: "Translations that failed and fell back to the untranslated text",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CatalogDrugs)
	prometheus.MustRegister(CatalogFacts)
	prometheus.MustRegister(CatalogLoadDuration)
	prometheus.MustRegister(CatalogLoadErrorsTotal)
	prometheus.MustRegister(ClassificationCacheRequestsTotal)
	prometheus.MustRegister(ClassificationFailuresTotal)
	prometheus.MustRegister(TranslationFailuresTotal)
}
