package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picnicweather_upstream_calls_total",
			Help: "Total Open-Meteo API calls",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "picnicweather_upstream_latency_seconds",
			Help:    "Open-Meteo API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picnicweather_cache_lookups_total",
			Help: "Cache lookups by namespace and result (hit, miss, stale, corrupt, error)",
		},
		[]string{"kind", "result"},
	)

	DaysClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picnicweather_days_classified_total",
			Help: "Forecast days classified, by condition",
		},
		[]string{"condition"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picnicweather_fetch_errors_total",
			Help: "Failed forecast and historical fetch operations",
		},
		[]string{"operation"},
	)
)
