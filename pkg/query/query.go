// Package query orchestrates reads and writes against the admin API through
// the query-result cache: stale-while-revalidate reads with request
// de-duplication, mutations with invalidation plans, and cursor pagination
// walkers.
package query

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/storefront-kit/adminapi/pkg/cache"
	"github.com/storefront-kit/adminapi/pkg/logging"
)

// FetchFunc loads the value for one cache key from the server. It is
// zero-argument apart from context: the key's query is already bound.
type FetchFunc func(ctx context.Context) (any, error)

// Options gates a single read.
type Options struct {
	// Disabled suppresses fetching entirely: an existing cached value is
	// still returned, but no network call is made and absent entries stay
	// absent. Used for conditional fetching on missing IDs or closed
	// dialogs.
	Disabled bool
}

// Result is the outcome of one read.
type Result struct {
	// Value is the cached or freshly fetched value; nil when State is
	// empty or the fetch failed.
	Value any

	// State is the entry state observed by this read. Stale results carry
	// the previous value while a background refetch is in flight.
	State cache.State

	// Err is the terminal fetch error, set only when no value could be
	// served. The retry affordance is re-invoking the same query.
	Err error
}

// Cache is the process-wide query/mutation orchestrator. It exclusively
// owns all cache entries; screens hold only read results and mutate cache
// state through mutations.
type Cache struct {
	store  cache.Store
	group  singleflight.Group
	logger zerolog.Logger
}

// NewCache creates an orchestrator over the given store.
func NewCache(store cache.Store) *Cache {
	if store == nil {
		panic("store cannot be nil")
	}
	return &Cache{
		store:  store,
		logger: logging.NewLogger("query-cache"),
	}
}

// Store exposes the underlying store, e.g. for Clear on logout.
func (c *Cache) Store() cache.Store {
	return c.store
}

// Query reads the value for key, fetching it with fetch when needed.
//
//   - absent entry: blocking fetch; concurrent reads for the same key
//     coalesce into a single network call and share the resolved value
//   - ready or refetching entry: served immediately
//   - stale entry: served immediately, background refetch triggered
//     (stale-while-revalidate)
//   - fetch error: surfaced on Err with the cache left untouched
//
// An abandoned caller does not cancel the shared fetch; the result is cached
// for the next observer.
func (c *Cache) Query(ctx context.Context, key cache.Key, fetch FetchFunc, opts Options) Result {
	entry, err := c.store.Get(ctx, key)
	if err == nil && entry.State.Usable() {
		queriesTotal.WithLabelValues(string(entry.State)).Inc()

		if entry.State == cache.StateStale && !opts.Disabled {
			c.refetchInBackground(ctx, key, fetch)
		}
		return Result{Value: entry.Value, State: entry.State}
	}

	if opts.Disabled {
		queriesTotal.WithLabelValues("disabled").Inc()
		return Result{State: cache.StateEmpty}
	}

	queriesTotal.WithLabelValues(string(cache.StateLoading)).Inc()
	return c.fetchBlocking(ctx, key, fetch)
}

// Invalidate marks every entry under prefix stale. The next read of an
// affected key serves the stale value and refetches.
func (c *Cache) Invalidate(ctx context.Context, prefix cache.Prefix) error {
	affected, err := c.store.Invalidate(ctx, prefix)
	if err != nil {
		return err
	}
	c.logger.Debug().
		Str("prefix", prefix.String()).
		Int("affected", affected).
		Msg("Invalidated cache prefix")
	return nil
}

// fetchBlocking performs the first fetch for a key. All concurrent callers
// share one network call via singleflight.
func (c *Cache) fetchBlocking(ctx context.Context, key cache.Key, fetch FetchFunc) Result {
	keyStr := key.String()

	value, err, _ := c.group.Do(keyStr, func() (any, error) {
		// Placeholder so concurrent invalidations know a fetch is landing.
		_ = c.store.Set(ctx, key, &cache.Entry{State: cache.StateLoading})

		value, err := fetch(ctx)
		if err != nil {
			// Failed fetches leave no trace: the placeholder goes away and
			// the key reads as absent again.
			_ = c.store.Delete(ctx, key)
			return nil, err
		}

		if setErr := c.store.Set(ctx, key, cache.NewReadyEntry(value)); setErr != nil {
			c.logger.Warn().Err(setErr).Str("cache_key", keyStr).Msg("Failed to store fetched value")
		}
		return value, nil
	})

	if err != nil {
		c.logger.Warn().Err(err).Str("cache_key", keyStr).Msg("Query fetch failed")
		return Result{State: cache.StateEmpty, Err: err}
	}
	return Result{Value: value, State: cache.StateReady}
}

// refetchInBackground refreshes a stale entry without blocking the caller.
// The fetch is detached from the caller's context: closing a screen does not
// cancel it, and the result lands in the cache for the next observer.
func (c *Cache) refetchInBackground(ctx context.Context, key cache.Key, fetch FetchFunc) {
	keyStr := key.String()
	detached := context.WithoutCancel(ctx)

	go func() {
		_, _, _ = c.group.Do(keyStr, func() (any, error) {
			entry, err := c.store.Get(detached, key)
			if err != nil || entry.State != cache.StateStale {
				// Another flight already refreshed it.
				return nil, nil
			}

			entry.State = cache.StateRefetching
			_ = c.store.Set(detached, key, entry)
			refetchesTotal.Inc()

			value, err := fetch(detached)
			if err != nil {
				// Keep serving the stale value; the next read retries.
				entry.State = cache.StateStale
				_ = c.store.Set(detached, key, entry)
				c.logger.Warn().Err(err).Str("cache_key", keyStr).Msg("Background refetch failed")
				return nil, nil
			}

			if err := c.store.Set(detached, key, cache.NewReadyEntry(value)); err != nil {
				c.logger.Warn().Err(err).Str("cache_key", keyStr).Msg("Failed to store refetched value")
			}
			return value, nil
		})
	}()
}
