package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client. Unit tests connect to a
// local instance and skip when none is available; the testcontainers
// variant lives under tests/integration.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, DefaultTTL)
}

func TestRedisStore_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, DefaultTTL)
	ctx := context.Background()
	key := Key{Resource: "products"}

	payload := []byte(`[{"id":"p1","name":"Pizza Margherita"}]`)
	if err := store.Set(ctx, key, payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(entry.Payload) != string(payload) {
		t.Errorf("Payload mismatch: got %s, want %s", entry.Payload, payload)
	}
}

func TestRedisStore_Get_Miss(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, DefaultTTL)

	_, err := store.Get(context.Background(), Key{Resource: "nonexistent"})
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisStore_Get_StaleIsMiss(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, DefaultTTL)
	ctx := context.Background()
	key := Key{Resource: "products"}

	t0 := time.Now().Add(-6 * time.Minute)
	store.SetClock(func() time.Time { return t0 })

	// Written with a FetchedAt six minutes in the past.
	if err := store.Set(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	store.SetClock(time.Now)
	if _, err := store.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for stale entry, got %v", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, DefaultTTL)
	ctx := context.Background()
	key := Key{Resource: "products"}

	if err := store.Set(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}
