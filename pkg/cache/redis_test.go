package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupRedisStore connects to a local Redis or skips. Containerized
// coverage lives in tests/integration.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:6379",
		DialTimeout: 500 * time.Millisecond,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at localhost:6379: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return NewRedisStore(client, time.Minute)
}

func TestRedisStore_SetGetRoundTrip(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	key := DetailKey("products", "p1")

	if err := store.Set(ctx, key, NewReadyEntry(map[string]string{"id": "p1"})); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.State != StateReady {
		t.Errorf("State = %s, want ready", entry.State)
	}

	raw, ok := entry.Value.(json.RawMessage)
	if !ok {
		t.Fatalf("Value type = %T, want json.RawMessage", entry.Value)
	}
	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Failed to decode value: %v", err)
	}
	if decoded["id"] != "p1" {
		t.Errorf("Value = %v", decoded)
	}
}

func TestRedisStore_GetMiss(t *testing.T) {
	store := setupRedisStore(t)

	if _, err := store.Get(context.Background(), DetailKey("products", "missing")); err != ErrMiss {
		t.Errorf("Err = %v, want ErrMiss", err)
	}
}

func TestRedisStore_InvalidateMarksStaleKeepingValue(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()
	key := ListKey("products", nil)

	if err := store.Set(ctx, key, NewReadyEntry([]string{"p1"})); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	affected, err := store.Invalidate(ctx, EntityPrefix("products"))
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Affected = %d, want 1", affected)
	}

	entry, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.State != StateStale {
		t.Errorf("State = %s, want stale", entry.State)
	}
	if entry.Value == nil {
		t.Error("Stale entry must keep its value")
	}
}

func TestRedisStore_DeleteAndClear(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	k1 := DetailKey("products", "p1")
	k2 := DetailKey("orders", "o1")
	store.Set(ctx, k1, NewReadyEntry("a"))
	store.Set(ctx, k2, NewReadyEntry("b"))

	if err := store.Delete(ctx, k1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, k1); err != ErrMiss {
		t.Errorf("Deleted key err = %v, want ErrMiss", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Get(ctx, k2); err != ErrMiss {
		t.Errorf("Cleared key err = %v, want ErrMiss", err)
	}
}
