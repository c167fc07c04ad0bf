package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookcafe",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "status"}, // "ok" / "empty" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookcafe",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, cache lookups excluded",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookcafe",
			Name:      "search_results",
			Help:      "Number of book IDs returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"mode"},
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookcafe",
			Name:      "search_fallback_total",
			Help:      "Searches that degraded to live-field matching",
		},
		[]string{"reason"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookcafe",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CatalogWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookcafe",
			Name:      "catalog_writes_total",
			Help:      "Catalog mutations by operation",
		},
		[]string{"op", "status"},
	)
)

var registerSearch sync.Once

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		SearchRequestsTotal,
		SearchDuration,
		SearchResults,
		SearchFallbackTotal,
		SearchCacheTotal,
		CatalogWritesTotal,
	}
}

// RegisterSearchMetrics registers search and catalog metrics with the default
// registry. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(collectors()...)
	})
}

// Register registers search and catalog metrics on reg.
// Collectors already registered on reg are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}
