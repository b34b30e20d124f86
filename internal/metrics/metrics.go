package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChoroplethRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_choropleth_requests_total",
		Help: "Total number of /atlas/choropleth requests",
	})
	StatisticsRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_statistics_requests_total",
		Help: "Total number of /atlas/statistics requests",
	})
	JoinDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_join_duration_ms",
		Help:    "Statistic-boundary join duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	UnmatchedStatsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_unmatched_statistics_total",
		Help: "Statistics rows dropped because no boundary matched",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_cache_hits_total",
		Help: "Total choropleth cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_cache_misses_total",
		Help: "Total choropleth cache misses",
	})
	HitTestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_hit_tests_total",
		Help: "Point-in-polygon fallback lookups performed",
	})
)

func init() {
	prometheus.MustRegister(ChoroplethRequestsTotal)
	prometheus.MustRegister(StatisticsRequestsTotal)
	prometheus.MustRegister(JoinDurationMs)
	prometheus.MustRegister(UnmatchedStatsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(HitTestsTotal)
}

// Handler exposes the registered metrics for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
