package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot metrics
	SnapshotPools = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "oracle_snapshot_pools",
			Help: "Number of pools in the most recent snapshot per venue",
		},
		[]string{"venue"},
	)

	SnapshotDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_snapshot_duration_seconds",
			Help:    "Time spent reading a venue's pool universe",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"venue"},
	)

	// Price query metrics
	PriceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_price_queries_total",
			Help: "Total number of getCoinPrices calls",
		},
		[]string{"selector", "status"},
	)

	PriceQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_price_query_duration_seconds",
			Help:    "getCoinPrices duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"selector"},
	)

	PriceResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_price_results_total",
			Help: "Per-token price outcomes",
		},
		[]string{"venue", "outcome"},
	)

	// Routing metrics
	RouteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_route_requests_total",
			Help: "Total number of calcRoute calls",
		},
		[]string{"venue", "status"},
	)

	RouteHops = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oracle_route_hops",
		Help:    "Number of pools in routes used for pricing",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
	})

	AggregatorQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_aggregator_quotes_total",
			Help: "External aggregator quote calls",
		},
		[]string{"status"},
	)

	DecimalsCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oracle_decimals_cache_size",
		Help: "Current number of entries in the token decimals cache",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)
