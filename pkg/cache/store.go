package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss indicates the requested key has no entry.
var ErrMiss = errors.New("cache miss")

// Store is the storage backend for cache entries.
//
// One store instance serves one application process (or one shared deployment
// for the redis implementation). It is created at startup and swept with
// Clear on full application reset, e.g. logout or tenant switch; it is never
// implicitly shared across tenants without that sweep.
type Store interface {
	// Get retrieves the entry for key, or ErrMiss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Set stores the entry for key, replacing any previous entry.
	Set(ctx context.Context, key Key, entry *Entry) error

	// Invalidate marks every entry under prefix stale and returns how many
	// entries were affected.
	Invalidate(ctx context.Context, prefix Prefix) (int, error)

	// Delete removes the entry for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key Key) error

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// MemoryStore is the in-process Store. It is safe for concurrent use; a
// single mutex is sufficient because entries are small and operations are
// map-bound.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
}

type memEntry struct {
	key   Key
	entry Entry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memEntry)}
}

// Get retrieves a copy of the entry for key.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	me, ok := s.entries[key.String()]
	if !ok {
		Misses.Inc()
		return nil, ErrMiss
	}

	Hits.WithLabelValues("memory").Inc()
	entry := me.entry
	return &entry, nil
}

// Set stores a copy of the entry for key.
func (s *MemoryStore) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key.String()] = &memEntry{key: key, entry: *entry}
	Entries.WithLabelValues("memory").Set(float64(len(s.entries)))
	return nil
}

// Invalidate marks every entry under prefix stale.
func (s *MemoryStore) Invalidate(_ context.Context, prefix Prefix) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	affected := 0
	for _, me := range s.entries {
		if me.key.Matches(prefix) {
			me.entry.MarkStale()
			affected++
		}
	}

	Invalidations.WithLabelValues("memory").Add(float64(affected))
	return affected, nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key.String())
	Entries.WithLabelValues("memory").Set(float64(len(s.entries)))
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*memEntry)
	Entries.WithLabelValues("memory").Set(0)
	return nil
}

// Len returns the number of resident entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// NewReadyEntry builds a ready entry fetched now.
func NewReadyEntry(value any) *Entry {
	return &Entry{Value: value, State: StateReady, FetchedAt: time.Now()}
}
