package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and reindex Prometheus metrics.
var (
	SearchModeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "myfridge",
			Name:      "search_requests_total",
			Help:      "Search requests by execution mode",
		},
		[]string{"mode"}, // "hybrid" / "lexical_only" / "filter_only" / "empty"
	)

	ReindexDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "myfridge",
			Name:      "reindex_documents_total",
			Help:      "Documents handled by the reindex pipeline",
		},
		[]string{"result"}, // "indexed" / "skipped" / "vectorless"
	)

	ReindexRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "myfridge",
			Name:      "reindex_runs_total",
			Help:      "Reindex runs by outcome",
		},
		[]string{"outcome"}, // "completed" / "failed_partial"
	)

	ReindexFailedBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "myfridge",
			Name:      "reindex_failed_batches_total",
			Help:      "Batches whose bulk index write failed",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and reindex metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchModeTotal)
	prometheus.MustRegister(ReindexDocumentsTotal)
	prometheus.MustRegister(ReindexRunsTotal)
	prometheus.MustRegister(ReindexFailedBatchesTotal)
	searchMetricsRegistered = true
}
