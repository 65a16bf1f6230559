package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found or the
	// entry fell out of the freshness window
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the keyed response cache consumed by the catalog loader.
//
// Get returns ErrCacheMiss for both absent and stale entries; staleness
// is a miss, not an error condition. Set unconditionally overwrites any
// existing entry and stamps it with the current time.
type Store interface {
	Get(ctx context.Context, key Key) (*Entry, error)
	Set(ctx context.Context, key Key, payload []byte) error
	Delete(ctx context.Context, key Key) error
}
