package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/feastly/catalog-client/pkg/cache"
	"github.com/feastly/catalog-client/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for loader operations.
var (
	catalogLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Total catalog loads by resource and source",
	}, []string{"resource", "source"}) // source: "cache", "network"

	catalogCoalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_inflight_coalesced_total",
		Help: "Concurrent loads coalesced into an in-flight fetch",
	})
)

// Loader orchestrates the response cache and the storefront client to
// produce catalog collections. Reads go through the cache; a miss (or a
// forced refresh) fetches from the network, filters the raw collection
// by the resource discriminator, and writes the result back.
//
// Concurrent loads for the same resource key are coalesced into a
// single fetch. Loads for distinct keys race freely; overlapping writes
// are last-write-wins, which is harmless for idempotent collection
// fetches.
type Loader struct {
	client *client.Client
	store  cache.Store
	logger zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*inflightFetch

	facetsMu sync.RWMutex
	facets   map[string]Facets
}

// inflightFetch is a fetch in progress; done is closed when items/err
// are populated.
type inflightFetch struct {
	done  chan struct{}
	items []Item
	err   error
}

// Facets are the auxiliary dimensions derived from a loaded product
// collection, used to seed the filter controls.
type Facets struct {
	// Restaurants is the distinct restaurant names, sorted, prefixed
	// with the "all" sentinel.
	Restaurants []string

	// MaxPrice is the maximum observed price, seeding the price-range
	// upper bound.
	MaxPrice float64
}

// NewLoader creates a loader over the given client and cache store.
func NewLoader(apiClient *client.Client, store cache.Store) *Loader {
	if apiClient == nil {
		panic("api client cannot be nil")
	}
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Loader{
		client:   apiClient,
		store:    store,
		logger:   log.With().Str("component", "catalog-loader").Logger(),
		inflight: make(map[string]*inflightFetch),
		facets:   make(map[string]Facets),
	}
}

// LoadOption adjusts a single Load call.
type LoadOption func(*loadOptions)

type loadOptions struct {
	forceRefresh bool
}

// WithForceRefresh bypasses the cache and always fetches from the
// network. This backs the user-facing "try again" affordance.
func WithForceRefresh() LoadOption {
	return func(o *loadOptions) {
		o.forceRefresh = true
	}
}

// Load returns the collection for the resource. Cache hits return
// without network access; misses and forced refreshes fetch, filter,
// cache, and return. On a fetch failure the previously cached value for
// the key is left untouched.
func (l *Loader) Load(ctx context.Context, resource Resource, opts ...LoadOption) ([]Item, error) {
	var options loadOptions
	for _, opt := range opts {
		opt(&options)
	}

	key := resource.cacheKey()

	if !options.forceRefresh {
		if items, ok := l.readCache(ctx, resource, key); ok {
			// Facets are a side effect of producing the collection,
			// not of the network fetch: a warm cache (e.g. redis after
			// a restart) must still seed the filter controls.
			if resource.Discriminator == TypeProduct {
				l.publishFacets(key.String(), items)
			}
			catalogLoadsTotal.WithLabelValues(resource.Name, "cache").Inc()
			return items, nil
		}
	}

	return l.fetch(ctx, resource, key)
}

// readCache reads and decodes the cached collection for key. A decode
// failure of our own payload is treated as a miss.
func (l *Loader) readCache(ctx context.Context, resource Resource, key cache.Key) ([]Item, bool) {
	entry, err := l.store.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			l.logger.Warn().Err(err).Str("resource", resource.Name).Msg("Cache get error")
		}
		return nil, false
	}

	var items []Item
	if err := json.Unmarshal(entry.Payload, &items); err != nil {
		l.logger.Warn().Err(err).Str("resource", resource.Name).Msg("Corrupt cache payload, refetching")
		return nil, false
	}

	l.logger.Debug().
		Str("resource", resource.Name).
		Int("items", len(items)).
		Msg("Cache hit")
	return items, true
}

// fetch performs the network load for key, coalescing concurrent calls
// for the same key into one request.
func (l *Loader) fetch(ctx context.Context, resource Resource, key cache.Key) ([]Item, error) {
	keyStr := key.String()

	l.mu.Lock()
	if pending, ok := l.inflight[keyStr]; ok {
		l.mu.Unlock()
		catalogCoalescedTotal.Inc()
		l.logger.Debug().Str("resource", resource.Name).Msg("Joining in-flight fetch")

		select {
		case <-pending.done:
			return pending.items, pending.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	pending := &inflightFetch{done: make(chan struct{})}
	l.inflight[keyStr] = pending
	l.mu.Unlock()

	items, err := l.doFetch(ctx, resource, key)

	pending.items = items
	pending.err = err
	close(pending.done)

	l.mu.Lock()
	delete(l.inflight, keyStr)
	l.mu.Unlock()

	return items, err
}

// doFetch executes the actual network request and cache write.
func (l *Loader) doFetch(ctx context.Context, resource Resource, key cache.Key) ([]Item, error) {
	var raw []Item
	if err := l.client.GetJSON(ctx, resource.Path, &raw); err != nil {
		// Surface the failure; any previously cached value for the
		// key stays usable until it expires.
		return nil, fmt.Errorf("load %s: %w", resource.Name, err)
	}

	items := raw
	if resource.Discriminator != "" {
		items = make([]Item, 0, len(raw))
		for _, item := range raw {
			if item.Type == "" || item.Type == resource.Discriminator {
				items = append(items, item)
			}
		}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s for cache: %w", resource.Name, err)
	}
	if err := l.store.Set(ctx, key, payload); err != nil {
		// A cache write failure does not fail the load.
		l.logger.Warn().Err(err).Str("resource", resource.Name).Msg("Cache set error")
	}

	if resource.Discriminator == TypeProduct {
		l.publishFacets(key.String(), items)
	}

	catalogLoadsTotal.WithLabelValues(resource.Name, "network").Inc()
	l.logger.Debug().
		Str("resource", resource.Name).
		Int("items", len(items)).
		Int("raw", len(raw)).
		Msg("Fetched collection")

	return items, nil
}

// publishFacets derives and stores the filter facets for a product
// collection, keyed by its full cache identity. A restaurant-scoped
// load must never clobber the full collection's facets.
func (l *Loader) publishFacets(key string, items []Item) {
	facets := DeriveFacets(items)

	l.facetsMu.Lock()
	l.facets[key] = facets
	l.facetsMu.Unlock()
}

// Facets returns the facets derived from the most recent load of
// exactly this resource (same scope parameters, same user).
func (l *Loader) Facets(resource Resource) (Facets, bool) {
	l.facetsMu.RLock()
	defer l.facetsMu.RUnlock()
	facets, ok := l.facets[resource.cacheKey().String()]
	return facets, ok
}

// LoadItem returns one catalog item by id, read through the cache the
// same way collections are. Single-item fetches are user-driven and
// cheap, so they skip the in-flight coalescing map.
func (l *Loader) LoadItem(ctx context.Context, id string, opts ...LoadOption) (*Item, error) {
	var options loadOptions
	for _, opt := range opts {
		opt(&options)
	}

	resource := Product(id)
	key := resource.cacheKey()

	if !options.forceRefresh {
		if entry, err := l.store.Get(ctx, key); err == nil {
			var item Item
			if err := json.Unmarshal(entry.Payload, &item); err == nil {
				catalogLoadsTotal.WithLabelValues(resource.Name, "cache").Inc()
				return &item, nil
			}
			l.logger.Warn().Str("resource", resource.Name).Msg("Corrupt cache payload, refetching")
		}
	}

	var item Item
	if err := l.client.GetJSON(ctx, resource.Path, &item); err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}

	if payload, err := json.Marshal(item); err == nil {
		if err := l.store.Set(ctx, key, payload); err != nil {
			l.logger.Warn().Err(err).Str("resource", resource.Name).Msg("Cache set error")
		}
	}

	catalogLoadsTotal.WithLabelValues(resource.Name, "network").Inc()
	return &item, nil
}

// LoadAll loads several resources concurrently with a bounded worker
// pool and returns the collections keyed by resource name. Failed
// resources are reported in the returned error; successful ones are
// still present in the map (partial results).
func (l *Loader) LoadAll(ctx context.Context, resources ...Resource) (map[string][]Item, error) {
	const maxWorkers = 4

	type result struct {
		name  string
		items []Item
		err   error
	}

	queue := make(chan Resource, len(resources))
	results := make(chan result, len(resources))

	for _, r := range resources {
		queue <- r
	}
	close(queue)

	workers := maxWorkers
	if len(resources) < workers {
		workers = len(resources)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range queue {
				items, err := l.Load(ctx, r)
				results <- result{name: r.Name, items: items, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	collections := make(map[string][]Item, len(resources))
	var firstErr error
	failed := 0
	for res := range results {
		if res.err != nil {
			failed++
			if firstErr == nil {
				firstErr = res.err
			}
			l.logger.Warn().Err(res.err).Str("resource", res.name).Msg("Resource load failed")
			continue
		}
		collections[res.name] = res.items
	}

	if firstErr != nil {
		return collections, fmt.Errorf("%d of %d resources failed: %w", failed, len(resources), firstErr)
	}
	return collections, nil
}
