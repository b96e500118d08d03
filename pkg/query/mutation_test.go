package query

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/storefront-kit/adminapi/pkg/cache"
)

func TestMutation_SuccessAppliesPlan(t *testing.T) {
	c, store := newTestCache(t)
	ctx := context.Background()

	listKey := cache.ListKey("product", nil)
	detailKey := cache.DetailKey("product", "3")
	store.Set(ctx, listKey, cache.NewReadyEntry([]string{"A", "B"}))

	m := c.NewMutation()
	created := map[string]string{"id": "3", "name": "C"}

	value, err := m.Run(ctx, func(ctx context.Context) (any, error) {
		return created, nil
	}, Plan{
		Invalidate: []cache.Prefix{cache.CategoryPrefix("product", cache.CategoryList)},
		Seed:       []Seed{{Key: detailKey, Value: created}},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff(created, value); diff != "" {
		t.Errorf("Value mismatch (-want +got):\n%s", diff)
	}
	if m.State() != MutationSuccess {
		t.Errorf("State = %s", m.State())
	}

	// The list entry is stale, the seeded detail entry ready.
	listEntry, _ := store.Get(ctx, listKey)
	if listEntry.State != cache.StateStale {
		t.Errorf("List state = %s, want stale", listEntry.State)
	}
	detailEntry, err := store.Get(ctx, detailKey)
	if err != nil {
		t.Fatalf("Seeded entry missing: %v", err)
	}
	if detailEntry.State != cache.StateReady {
		t.Errorf("Seeded state = %s, want ready", detailEntry.State)
	}
}

func TestMutation_InvalidationBeforeSuccessCallback(t *testing.T) {
	// A read issued from the success callback must observe stale, not
	// ready, for the invalidated key.
	c, store := newTestCache(t)
	ctx := context.Background()

	listKey := cache.ListKey("product", nil)
	store.Set(ctx, listKey, cache.NewReadyEntry([]string{"A", "B"}))

	var observed cache.State
	m := c.NewMutation()
	m.OnSuccess = func(any) {
		entry, err := store.Get(ctx, listKey)
		if err != nil {
			t.Errorf("Get in callback failed: %v", err)
			return
		}
		observed = entry.State
	}

	_, err := m.Run(ctx, func(ctx context.Context) (any, error) {
		return "C", nil
	}, Plan{Invalidate: []cache.Prefix{cache.CategoryPrefix("product", cache.CategoryList)}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if observed != cache.StateStale {
		t.Errorf("Callback observed %s, want stale", observed)
	}
}

func TestMutation_RemoveDeletesEntry(t *testing.T) {
	c, store := newTestCache(t)
	ctx := context.Background()

	detailKey := cache.DetailKey("product", "1")
	store.Set(ctx, detailKey, cache.NewReadyEntry("record"))

	m := c.NewMutation()
	_, err := m.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, nil
	}, Plan{
		Invalidate: []cache.Prefix{cache.CategoryPrefix("product", cache.CategoryList)},
		Remove:     []cache.Key{detailKey},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := store.Get(ctx, detailKey); err != cache.ErrMiss {
		t.Errorf("Deleted record's detail entry should be gone, got %v", err)
	}
}

func TestMutation_ErrorLeavesCacheUntouched(t *testing.T) {
	c, store := newTestCache(t)
	ctx := context.Background()

	listKey := cache.ListKey("product", nil)
	store.Set(ctx, listKey, cache.NewReadyEntry([]string{"A"}))

	boom := errors.New("rejected")
	m := c.NewMutation()
	m.OnSuccess = func(any) { t.Error("OnSuccess must not fire on failure") }

	_, err := m.Run(ctx, func(ctx context.Context) (any, error) {
		return nil, boom
	}, Plan{Invalidate: []cache.Prefix{cache.EntityPrefix("product")}})

	if !errors.Is(err, boom) {
		t.Errorf("Err = %v", err)
	}
	if m.State() != MutationError {
		t.Errorf("State = %s", m.State())
	}
	if !errors.Is(m.Err(), boom) {
		t.Errorf("m.Err() = %v", m.Err())
	}

	entry, _ := store.Get(ctx, listKey)
	if entry.State != cache.StateReady {
		t.Errorf("State = %s, failed mutations must not invalidate", entry.State)
	}
}

func TestMutation_StateLifecycle(t *testing.T) {
	c, _ := newTestCache(t)
	m := c.NewMutation()

	if m.State() != MutationIdle {
		t.Errorf("Initial state = %s", m.State())
	}

	var during MutationState
	_, err := m.Run(context.Background(), func(ctx context.Context) (any, error) {
		during = m.State()
		return nil, nil
	}, Plan{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if during != MutationPending {
		t.Errorf("State during op = %s, want pending", during)
	}
	if m.State() != MutationSuccess {
		t.Errorf("Final state = %s", m.State())
	}
}
