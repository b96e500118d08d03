package query

import (
	"context"
	"iter"
	"sync"

	"github.com/storefront-kit/adminapi/pkg/cache"
	"github.com/storefront-kit/adminapi/pkg/page"
)

// CursorFetchFunc fetches one cursor-mode page. cursor is empty for the
// first page, otherwise the opaque token from the previous page.
type CursorFetchFunc[T any] func(ctx context.Context, cursor string) (page.CursorPage[T], error)

// WalkerOptions optionally binds a walker to the query cache.
type WalkerOptions struct {
	// Store, with Key, caches the walker's page sequence. When the entry is
	// invalidated, the next FetchNext discards all pages and restarts from
	// the first page.
	Store cache.Store
	Key   cache.Key
}

// Walker maintains the ordered page sequence of one cursor-mode list query.
//
// It exposes exactly three things to the caller: HasMore, FetchNext and
// IsFetchingNext. How the fetch trigger is produced, e.g. a
// proximity-to-end signal, is the caller's concern.
type Walker[T any] struct {
	fetch CursorFetchFunc[T]
	opts  WalkerOptions

	mu       sync.Mutex
	pages    []page.CursorPage[T]
	cursor   string
	started  bool
	hasMore  bool
	fetching bool
}

// NewWalker creates a walker that has fetched nothing yet. HasMore starts
// true: the first FetchNext performs the initial fetch from the null cursor.
func NewWalker[T any](fetch CursorFetchFunc[T], opts WalkerOptions) *Walker[T] {
	return &Walker[T]{fetch: fetch, opts: opts, hasMore: true}
}

// HasMore reports whether the server indicated a further page (or nothing
// has been fetched yet).
func (w *Walker[T]) HasMore() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasMore
}

// IsFetchingNext reports whether a fetch is in flight.
func (w *Walker[T]) IsFetchingNext() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fetching
}

// Pages returns a snapshot of the pages fetched so far, in fetch order.
func (w *Walker[T]) Pages() []page.CursorPage[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]page.CursorPage[T](nil), w.pages...)
}

// Len returns the total number of items across fetched pages.
func (w *Walker[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, p := range w.pages {
		n += len(p.Items)
	}
	return n
}

// Reset discards all pages; the next FetchNext restarts from the first page.
func (w *Walker[T]) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

func (w *Walker[T]) reset() {
	w.pages = nil
	w.cursor = ""
	w.started = false
	w.hasMore = true
}

// FetchNext fetches the next page. It is a silent no-op when there is
// nothing further to fetch or a fetch is already in flight; redundant calls
// never error. On fetch failure the page sequence is left unchanged and the
// same call can simply be retried.
func (w *Walker[T]) FetchNext(ctx context.Context) error {
	w.mu.Lock()
	if !w.hasMore || w.fetching {
		w.mu.Unlock()
		return nil
	}
	if w.started && w.boundEntryStale(ctx) {
		// The cached sequence was invalidated; start over.
		w.reset()
	}
	w.fetching = true
	cursor := w.cursor
	w.mu.Unlock()

	p, err := w.fetch(ctx, cursor)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.fetching = false
	if err != nil {
		return err
	}

	w.pages = append(w.pages, p)
	w.started = true
	w.hasMore = p.HasMore()
	if w.hasMore {
		w.cursor = *p.NextCursor
	} else {
		w.cursor = ""
	}

	w.storeBoundEntry(ctx)
	walkerPagesTotal.Inc()
	return nil
}

// boundEntryStale reports whether the bound cache entry was invalidated.
// Called with w.mu held.
func (w *Walker[T]) boundEntryStale(ctx context.Context) bool {
	if w.opts.Store == nil {
		return false
	}
	entry, err := w.opts.Store.Get(ctx, w.opts.Key)
	if err != nil {
		return false
	}
	return entry.State == cache.StateStale
}

// storeBoundEntry caches the current page sequence. Called with w.mu held.
func (w *Walker[T]) storeBoundEntry(ctx context.Context) {
	if w.opts.Store == nil {
		return
	}
	snapshot := append([]page.CursorPage[T](nil), w.pages...)
	_ = w.opts.Store.Set(ctx, w.opts.Key, cache.NewReadyEntry(snapshot))
}

// Flatten returns a lazy, restartable sequence of all fetched items,
// concatenating pages in fetch order. Items are never reordered or
// deduplicated client-side; duplicate suppression is a server contract.
func (w *Walker[T]) Flatten() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, p := range w.Pages() {
			for _, item := range p.Items {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// SearchFetchFunc fetches one cursor-mode page of search results for query.
type SearchFetchFunc[T any] func(ctx context.Context, query, cursor string) (page.CursorPage[T], error)

// SearchWalker is a Walker additionally keyed by a search query string.
// Changing the query starts a new logical list query: all pages are
// discarded and fetching restarts from the null cursor.
type SearchWalker[T any] struct {
	fetch SearchFetchFunc[T]
	opts  WalkerOptions

	mu     sync.Mutex
	query  string
	walker *Walker[T]
}

// NewSearchWalker creates a search walker with an empty query. FetchNext is
// a no-op until SetQuery provides a non-empty query.
func NewSearchWalker[T any](fetch SearchFetchFunc[T], opts WalkerOptions) *SearchWalker[T] {
	return &SearchWalker[T]{fetch: fetch, opts: opts}
}

// SetQuery switches the active query string. A changed query resets the
// page sequence; setting the same query again is a no-op.
func (s *SearchWalker[T]) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == s.query && s.walker != nil {
		return
	}

	s.query = query
	if query == "" {
		s.walker = nil
		return
	}

	opts := s.opts
	if opts.Store != nil {
		opts.Key = cache.CursorKey(opts.Key.Entity, cache.Filters{"query": query})
	}
	s.walker = NewWalker(func(ctx context.Context, cursor string) (page.CursorPage[T], error) {
		return s.fetch(ctx, query, cursor)
	}, opts)
}

// Query returns the active query string.
func (s *SearchWalker[T]) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// FetchNext fetches the next page of the active query. With no active
// query it is a silent no-op.
func (s *SearchWalker[T]) FetchNext(ctx context.Context) error {
	if w := s.active(); w != nil {
		return w.FetchNext(ctx)
	}
	return nil
}

// HasMore reports whether the active query has a further page.
func (s *SearchWalker[T]) HasMore() bool {
	if w := s.active(); w != nil {
		return w.HasMore()
	}
	return false
}

// IsFetchingNext reports whether a fetch is in flight.
func (s *SearchWalker[T]) IsFetchingNext() bool {
	if w := s.active(); w != nil {
		return w.IsFetchingNext()
	}
	return false
}

// Flatten returns the flattened item sequence of the active query.
func (s *SearchWalker[T]) Flatten() iter.Seq[T] {
	if w := s.active(); w != nil {
		return w.Flatten()
	}
	return func(func(T) bool) {}
}

func (s *SearchWalker[T]) active() *Walker[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walker
}
