package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopscout",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	RetailerRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "retailer_requests_total",
		Help:      "Total extraction runs by retailer and result status.",
	}, []string{"retailer", "status"})

	RetailerRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopscout",
		Name:      "retailer_request_duration_seconds",
		Help:      "Retailer extraction chain duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"retailer"})

	RetailerAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shopscout",
		Name:      "retailer_available",
		Help:      "Whether a retailer is available (1) or blocked by circuit breaker (0).",
	}, []string{"retailer"})

	StageResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "extraction_stage_results_total",
		Help:      "Fallback-chain stage outcomes by retailer, stage and result.",
	}, []string{"retailer", "stage", "result"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "cache_hits_total",
		Help:      "Total number of search response cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "cache_misses_total",
		Help:      "Total number of search response cache misses.",
	})

	RenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shopscout",
		Name:      "render_request_duration_seconds",
		Help:      "Rendering service request duration in seconds.",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 60},
	})

	LLMRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "llm_requests_total",
		Help:      "Total completion requests by result status.",
	}, []string{"status"})

	LLMCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shopscout",
		Name:      "llm_cache_hits_total",
		Help:      "Total number of prompt cache hits.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RetailerRequestsTotal,
		RetailerRequestDuration,
		RetailerAvailable,
		StageResultsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		RenderDuration,
		LLMRequestsTotal,
		LLMCacheHitsTotal,
	)
}
