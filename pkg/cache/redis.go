package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis, for deployments that share one
// cache across several proxy instances. Keys carry a server-side expiry
// matching the freshness window, but freshness is still decided from
// the entry's FetchedAt stamp so both backends behave identically.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

// NewRedisStore creates a redis-backed store with the given freshness
// window. A non-positive ttl falls back to DefaultTTL.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves the entry for key.
// Returns ErrCacheMiss if the key is absent or the entry is stale.
func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	cacheKey := key.String()

	data, err := s.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if !entry.Fresh(s.now(), s.ttl) {
		_ = s.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Set stores payload under key with a server-side expiry matching the
// freshness window.
func (s *RedisStore) Set(ctx context.Context, key Key, payload []byte) error {
	cacheKey := key.String()

	entry := Entry{
		Payload:   payload,
		FetchedAt: s.now(),
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheWrittenBytes.WithLabelValues("redis").Add(float64(len(payload)))
	return nil
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// SetClock replaces the time source (for testing).
func (s *RedisStore) SetClock(now func() time.Time) {
	s.now = now
}
