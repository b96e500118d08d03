package cache

import (
	"time"
)

// State is the lifecycle state of a cache entry.
//
// Lifecycle: an absent entry moves through loading to ready on first fetch;
// ready entries move through refetching back to ready on refresh; any state
// becomes stale on invalidation, and a stale entry is served while the next
// access triggers a refetch. Explicit deletion removes the entry outright.
type State string

const (
	// StateEmpty marks an absent entry. It is never stored; it appears only
	// in query results for keys with no entry, e.g. a gated query that has
	// not fetched yet.
	StateEmpty State = "empty"

	// StateLoading marks the first fetch, before any value exists.
	StateLoading State = "loading"

	// StateReady marks a fresh value.
	StateReady State = "ready"

	// StateRefetching marks a value being refreshed; the old value is still
	// served while the fetch is in flight.
	StateRefetching State = "refetching"

	// StateStale marks an invalidated value. It is served immediately on
	// read, and the read triggers a background refetch.
	StateStale State = "stale"
)

// Usable reports whether an entry in this state carries a servable value.
func (s State) Usable() bool {
	return s == StateReady || s == StateRefetching || s == StateStale
}

// Entry is one cached query result.
type Entry struct {
	// Value is the cached result. In-memory stores hold the caller's typed
	// value; the redis store surfaces json.RawMessage.
	Value any `json:"value"`

	// State is the entry's lifecycle state.
	State State `json:"state"`

	// FetchedAt is when the value was last fetched from the server.
	FetchedAt time.Time `json:"fetched_at"`
}

// MarkStale transitions the entry to stale. Loading entries are left alone:
// there is no value to serve stale, and the in-flight fetch will land fresh.
func (e *Entry) MarkStale() {
	if e.State == StateLoading {
		return
	}
	e.State = StateStale
}
