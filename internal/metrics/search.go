package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archon",
			Name:      "search_requests_total",
			Help:      "Total number of retrieval queries",
		},
		[]string{"collection", "status"},
	)

	SearchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "archon",
			Name:      "search_duration_seconds",
			Help:      "Retrieval query duration in seconds, embedding included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"collection"},
	)

	SearchResultsFound = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "archon",
			Name:      "search_results_found",
			Help:      "Number of hits returned per retrieval query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"collection"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDurationSeconds)
	prometheus.MustRegister(SearchResultsFound)
	searchMetricsRegistered = true
}
