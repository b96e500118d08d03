// Package metrics provides the centralized Prometheus metrics registry for
// the admin API client. All metrics are defined in their owning packages
// (client, cache, query) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the admin API client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - adminapi_requests_total{route, status} (Counter): Total requests by route and HTTP status
//   - adminapi_request_duration_seconds{route} (Histogram): Request duration by route
//   - adminapi_errors_total{class} (Counter): Errors by class (network, not_found, validation, server, precondition)
//   - adminapi_rate_limit_remaining (Gauge): Last observed X-RateLimit-Remaining value
//
// Cache Metrics (pkg/cache):
//   - adminapi_cache_hits_total{store} (Counter): Cache hits by store (memory, redis)
//   - adminapi_cache_misses_total (Counter): Cache misses
//   - adminapi_cache_invalidations_total{store} (Counter): Entries marked stale by prefix invalidation
//   - adminapi_cache_entries{store} (Gauge): Current resident cache entries
//   - adminapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Query Metrics (pkg/query):
//   - adminapi_queries_total{state} (Counter): Reads by observed cache state (loading, ready, refetching, stale, disabled)
//   - adminapi_query_refetches_total (Counter): Background refetches of stale entries
//   - adminapi_mutations_total{result} (Counter): Mutations by result (success, error)
//   - adminapi_walker_pages_total (Counter): Cursor pages fetched by pagination walkers
//   - adminapi_retries_total{error_class} (Counter): Explicit retry attempts by error class
//   - adminapi_retry_exhausted_total (Counter): Retries that exhausted all attempts
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(adminapi_cache_hits_total[5m])) /
//   (sum(rate(adminapi_cache_hits_total[5m])) + sum(rate(adminapi_cache_misses_total[5m])))
//
//   # Share of reads served stale while revalidating
//   rate(adminapi_queries_total{state="stale"}[5m]) / rate(adminapi_queries_total[5m])
//
//   # Request Error Rate
//   rate(adminapi_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(adminapi_request_duration_seconds_bucket[5m]))
//
//   # Rate limit headroom
//   adminapi_rate_limit_remaining < 20
