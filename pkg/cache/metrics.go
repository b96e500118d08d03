package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits tracks cache hits by store backend.
	Hits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminapi_cache_hits_total",
			Help: "Total number of query cache hits",
		},
		[]string{"store"}, // "memory", "redis"
	)

	// Misses tracks cache misses.
	Misses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adminapi_cache_misses_total",
			Help: "Total number of query cache misses",
		},
	)

	// Invalidations tracks entries marked stale by prefix invalidation.
	Invalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminapi_cache_invalidations_total",
			Help: "Total number of cache entries marked stale",
		},
		[]string{"store"},
	)

	// Entries tracks resident entry count by store backend.
	Entries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adminapi_cache_entries",
			Help: "Current number of resident cache entries",
		},
		[]string{"store"},
	)

	// Errors tracks cache operation errors.
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminapi_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "invalidate", "delete", "clear"
	)
)
