// Package cache provides the keyed response cache used by the catalog
// loader.
//
// Cached payloads are fresh for a fixed window (5 minutes by default); a
// stale entry is reported as ErrCacheMiss, never returned. Freshness is
// always decided at read time from the entry's FetchedAt stamp, so every
// backend agrees on the window even when the backend also expires keys
// itself.
//
// Two backends implement the Store interface:
//
//   - MemoryStore: process-local map, the default for a single storefront
//     session. No capacity bound; the key set is the small, fixed set of
//     catalog resources.
//   - RedisStore: shared cache for deployments running several proxy
//     instances against the same storefront API.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore(cache.DefaultTTL)
//
//	key := cache.Key{Resource: "products"}
//
//	// Get from cache
//	entry, err := store.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Miss or stale - fetch from the storefront API
//	}
//
//	// Store a fetched payload (stamps FetchedAt with the current time)
//	if err := store.Set(ctx, key, payload); err != nil {
//		return err
//	}
//
// # Metrics
//
// Both backends export Prometheus metrics:
//
//   - catalog_cache_hits_total{backend} - Cache hits
//   - catalog_cache_misses_total - Cache misses (including stale reads)
//   - catalog_cache_written_bytes_total{backend} - Cumulative payload bytes written
//   - catalog_cache_errors_total{operation} - Cache operation errors
package cache
