package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search backend Prometheus metrics.
var (
	SolrRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bizsearch",
			Name:      "solr_requests_total",
			Help:      "Total number of Solr requests",
		},
		[]string{"status"}, // "ok" / "query_error" / "error"
	)

	SolrRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bizsearch",
			Name:      "solr_request_duration_seconds",
			Help:      "Solr request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	SearchFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bizsearch",
			Name:      "search_fallbacks_total",
			Help:      "Searches retried with the simplified query after a nested clause limit error",
		},
	)

	SolrCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bizsearch",
			Name:      "solr_cache_total",
			Help:      "Solr response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SolrRequestsTotal)
	prometheus.MustRegister(SolrRequestDuration)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(SolrCacheTotal)
	searchMetricsRegistered = true
}
