package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists session fields in a redis hash, for proxy
// deployments where sessions must survive a process restart.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a redis-backed session store. sessionID
// isolates concurrent sessions (one hash per session).
func NewRedisStore(redisClient *redis.Client, sessionID string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		key:   "session:" + sessionID,
	}
}

// Get returns the value for key, or "" when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.redis.HGet(ctx, s.key, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return value, nil
}

// Set stores value under key.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Clear removes the whole session hash in one command.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
