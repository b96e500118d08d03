package query

import (
	"context"
	"sync"

	"github.com/storefront-kit/adminapi/pkg/cache"
)

// MutationState is the observable state of a mutation.
type MutationState string

const (
	// MutationIdle means the mutation has not run yet.
	MutationIdle MutationState = "idle"

	// MutationPending means the operation is in flight.
	MutationPending MutationState = "pending"

	// MutationSuccess means the operation succeeded and its plan was applied.
	MutationSuccess MutationState = "success"

	// MutationError means the operation failed; the cache was not touched.
	MutationError MutationState = "error"
)

// Seed is an explicit (key, value) cache write, used to seed a detail entry
// with a just-created or just-updated record without a round trip.
type Seed struct {
	Key   cache.Key
	Value any
}

// Plan describes the cache effects of a successful mutation.
type Plan struct {
	// Invalidate lists key prefixes to mark stale.
	Invalidate []cache.Prefix

	// Seed lists explicit entries to write as ready.
	Seed []Seed

	// Remove lists entries to delete outright, e.g. the detail entry of a
	// deleted record.
	Remove []cache.Key
}

// Operation performs the write against the server and returns its result.
type Operation func(ctx context.Context) (any, error)

// Mutation runs one write operation and applies its invalidation plan.
//
// The plan is applied synchronously before Run returns and before the
// OnSuccess callback fires, so any read issued from the callback observes
// stale, not ready, for affected keys.
type Mutation struct {
	cache *Cache

	// OnSuccess, when set, runs after the plan has been applied.
	OnSuccess func(value any)

	mu    sync.Mutex
	state MutationState
	err   error
}

// NewMutation creates an idle mutation bound to the orchestrator.
func (c *Cache) NewMutation() *Mutation {
	return &Mutation{cache: c, state: MutationIdle}
}

// State returns the mutation's observable state.
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the terminal error of the last run, nil unless State is error.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Run executes op. On success the plan is applied, then OnSuccess fires,
// then the result is returned. On failure the cache is left untouched and
// the error surfaces both on the return value and on Err.
func (m *Mutation) Run(ctx context.Context, op Operation, plan Plan) (any, error) {
	m.setState(MutationPending, nil)

	value, err := op(ctx)
	if err != nil {
		m.setState(MutationError, err)
		mutationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	m.applyPlan(ctx, plan)
	m.setState(MutationSuccess, nil)
	mutationsTotal.WithLabelValues("success").Inc()

	if m.OnSuccess != nil {
		m.OnSuccess(value)
	}
	return value, nil
}

// applyPlan applies seeds, removals and prefix invalidations in order.
func (m *Mutation) applyPlan(ctx context.Context, plan Plan) {
	for _, seed := range plan.Seed {
		if err := m.cache.store.Set(ctx, seed.Key, cache.NewReadyEntry(seed.Value)); err != nil {
			m.cache.logger.Warn().Err(err).Str("cache_key", seed.Key.String()).Msg("Failed to seed cache entry")
		}
	}
	for _, key := range plan.Remove {
		if err := m.cache.store.Delete(ctx, key); err != nil {
			m.cache.logger.Warn().Err(err).Str("cache_key", key.String()).Msg("Failed to remove cache entry")
		}
	}
	for _, prefix := range plan.Invalidate {
		if err := m.cache.Invalidate(ctx, prefix); err != nil {
			m.cache.logger.Warn().Err(err).Str("prefix", prefix.String()).Msg("Failed to invalidate prefix")
		}
	}
}

func (m *Mutation) setState(state MutationState, err error) {
	m.mu.Lock()
	m.state = state
	m.err = err
	m.mu.Unlock()
}
