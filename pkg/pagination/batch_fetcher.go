// Package pagination provides parallel batch fetching of offset-paginated
// admin API collections.
//
// Report and statistics exports need every page of a collection, not an
// incrementally scrolled window. The batch fetcher fetches the first page to
// learn the total, then spreads the remaining pages across a worker pool and
// reassembles them in page order. Cursor-mode lists are walked sequentially
// elsewhere; one opaque cursor chain cannot be parallelized.
package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/storefront-kit/adminapi/pkg/page"
)

// PageFunc fetches one offset page. pageNum starts at 1.
type PageFunc[T any] func(ctx context.Context, pageNum, limit int) (page.Envelope[T], error)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests.
	MaxConcurrency int

	// PageSize is the limit sent with every page request.
	PageSize int

	// Timeout bounds each individual page fetch.
	Timeout time.Duration
}

// DefaultConfig returns safe defaults for admin API exports.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		PageSize:       100,
		Timeout:        15 * time.Second,
	}
}

// BatchFetcher fetches all pages of one collection in parallel.
type BatchFetcher[T any] struct {
	fetch  PageFunc[T]
	config Config
}

// NewBatchFetcher creates a batch fetcher over a page function.
func NewBatchFetcher[T any](fetch PageFunc[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &BatchFetcher[T]{fetch: fetch, config: config}
}

// FetchAll fetches every page and returns the items concatenated in page
// order. When the server reports a total, remaining pages are fetched by a
// worker pool; otherwise pages are walked sequentially until a short page.
// On a worker error the items gathered so far are returned alongside the
// error.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context) ([]T, error) {
	start := time.Now()

	first, err := bf.fetch(ctx, 1, bf.config.PageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	if first.Total == nil {
		return bf.fetchSequential(ctx, first, start)
	}

	totalPages := (*first.Total + bf.config.PageSize - 1) / bf.config.PageSize
	log.Info().
		Int("total", *first.Total).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	if totalPages <= 1 {
		log.Info().
			Int("pages", 1).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return first.Items, nil
	}

	pages := make([][]T, totalPages+1)
	pages[1] = first.Items
	var pagesMu sync.Mutex

	pageQueue := make(chan int, totalPages)
	workerErrs := make(chan error, bf.config.MaxConcurrency)

	for p := 2; p <= totalPages; p++ {
		pageQueue <- p
	}
	close(pageQueue)

	var wg sync.WaitGroup
	for range bf.config.MaxConcurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageNum := range pageQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
				env, err := bf.fetch(pageCtx, pageNum, bf.config.PageSize)
				cancel()

				if err != nil {
					log.Warn().Err(err).Int("page", pageNum).Msg("Page fetch failed")
					select {
					case workerErrs <- err:
					default:
					}
					return
				}

				pagesMu.Lock()
				pages[pageNum] = env.Items
				pagesMu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(workerErrs)

	items := make([]T, 0, *first.Total)
	fetched := 0
	for p := 1; p <= totalPages; p++ {
		if pages[p] != nil {
			items = append(items, pages[p]...)
			fetched++
		}
	}

	if err := <-workerErrs; err != nil {
		log.Warn().
			Err(err).
			Int("fetched_pages", fetched).
			Int("total_pages", totalPages).
			Msg("Worker error - returning partial results")
		return items, fmt.Errorf("worker error (partial data: %d/%d pages): %w", fetched, totalPages, err)
	}

	log.Info().
		Int("pages", fetched).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")
	return items, nil
}

// fetchSequential walks pages in order until a short page. Used when the
// server omits the total and the page count is unknown up front.
func (bf *BatchFetcher[T]) fetchSequential(ctx context.Context, first page.Envelope[T], start time.Time) ([]T, error) {
	items := first.Items
	pageNum := 1

	for len(first.Items) == bf.config.PageSize {
		pageNum++
		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		env, err := bf.fetch(pageCtx, pageNum, bf.config.PageSize)
		cancel()
		if err != nil {
			return items, fmt.Errorf("fetch page %d: %w", pageNum, err)
		}
		items = append(items, env.Items...)
		first = env
	}

	log.Info().
		Int("pages", pageNum).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete (sequential)")
	return items, nil
}
