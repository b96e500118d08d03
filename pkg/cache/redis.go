package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidEntry indicates a stored entry that could not be decoded.
var ErrInvalidEntry = errors.New("invalid cache entry")

// DefaultRedisTTL bounds how long shared entries outlive their last write.
// Entries are kept fresh by invalidation, not by TTL; the TTL only reclaims
// keys no console process is reading anymore.
const DefaultRedisTTL = 30 * time.Minute

// RedisStore is a Store backed by redis, for sharing cached pages across
// console processes behind the same tenant.
//
// Values surface as json.RawMessage on Get; callers decode into their typed
// envelope. Set marshals whatever value the entry carries.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// wireEntry is the serialized redis representation of an Entry.
type wireEntry struct {
	Value     json.RawMessage `json:"value"`
	State     State           `json:"state"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NewRedisStore creates a redis-backed store with the given entry TTL.
// A non-positive ttl uses DefaultRedisTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

// Get retrieves the entry for key, or ErrMiss.
func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			Misses.Inc()
			return nil, ErrMiss
		}
		Errors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var wire wireEntry
	if err := json.Unmarshal(data, &wire); err != nil {
		Errors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	Hits.WithLabelValues("redis").Inc()
	return &Entry{Value: wire.Value, State: wire.State, FetchedAt: wire.FetchedAt}, nil
}

// Set stores the entry for key with the store's TTL.
func (s *RedisStore) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}

	value, err := json.Marshal(entry.Value)
	if err != nil {
		Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache value: %w", err)
	}

	data, err := json.Marshal(wireEntry{Value: value, State: entry.State, FetchedAt: entry.FetchedAt})
	if err != nil {
		Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, key.String(), data, s.ttl).Err(); err != nil {
		Errors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate marks every entry under prefix stale. Matching keys are found
// by SCAN on the serialized prefix, then rewritten with state stale.
func (s *RedisStore) Invalidate(ctx context.Context, prefix Prefix) (int, error) {
	affected := 0
	err := s.scan(ctx, prefix.String()+"*", func(redisKey string) error {
		data, err := s.redis.Get(ctx, redisKey).Bytes()
		if err != nil {
			if err == redis.Nil {
				return nil
			}
			return fmt.Errorf("redis get: %w", err)
		}

		var wire wireEntry
		if err := json.Unmarshal(data, &wire); err != nil {
			// Unreadable entries cannot be served either; drop them.
			return s.redis.Del(ctx, redisKey).Err()
		}
		if wire.State == StateLoading || wire.State == StateStale {
			return nil
		}

		wire.State = StateStale
		updated, err := json.Marshal(wire)
		if err != nil {
			return fmt.Errorf("marshal cache entry: %w", err)
		}
		if err := s.redis.Set(ctx, redisKey, updated, redis.KeepTTL).Err(); err != nil {
			return fmt.Errorf("redis set: %w", err)
		}
		affected++
		return nil
	})
	if err != nil {
		Errors.WithLabelValues("invalidate").Inc()
		return affected, err
	}

	Invalidations.WithLabelValues("redis").Add(float64(affected))
	return affected, nil
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		Errors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every entry in the store's namespace.
func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.scan(ctx, keyNamespace+":*", func(redisKey string) error {
		return s.redis.Del(ctx, redisKey).Err()
	})
	if err != nil {
		Errors.WithLabelValues("clear").Inc()
		return err
	}
	return nil
}

// scan iterates all keys matching pattern, invoking fn for each.
func (s *RedisStore) scan(ctx context.Context, pattern string, fn func(key string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		for _, k := range keys {
			if err := fn(k); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
