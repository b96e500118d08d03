// Package cache provides the query-result cache for the admin console.
//
// Cached results are keyed hierarchically per entity and query variant:
//
//	adminapi:product:list:limit=20:storeId=a
//	adminapi:product:detail:42
//	adminapi:product:search:query=red
//	adminapi:product:cursor:query=red
//
// Filter segments are stripped of empty values and stably sorted, so
// structurally equal filter maps always derive the same key no matter how the
// caller assembled them.
//
// # Entry Lifecycle
//
// Entries move through loading -> ready on first fetch, ready -> refetching
// -> ready on refresh, and any state -> stale on invalidation. Stale entries
// are served immediately while the next read refetches in the background
// (stale-while-revalidate). Invalidation never deletes; deletion is explicit
// and reserved for entries no view should reference again, e.g. the detail
// entry of a deleted record.
//
// # Prefix Invalidation
//
//	store.Invalidate(ctx, cache.CategoryPrefix("product", cache.CategoryList))
//
// marks every product list entry stale, regardless of trailing filter
// segments, and leaves product detail entries untouched.
//
// # Stores
//
// MemoryStore is the process-wide default: one instance per running console
// process, created at startup, swept with Clear on logout or tenant switch.
// RedisStore shares entries across console processes behind the same tenant;
// its values surface as json.RawMessage and are decoded by the query layer.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - adminapi_cache_hits_total{store} - cache hits by backend
//   - adminapi_cache_misses_total - cache misses
//   - adminapi_cache_invalidations_total{store} - entries marked stale
//   - adminapi_cache_entries{store} - resident entries
//   - adminapi_cache_errors_total{operation} - operation errors
package cache
