package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/feastly/catalog-client/pkg/cache"
	"github.com/feastly/catalog-client/pkg/client"
)

const productsBody = `[
	{"id":"p1","name":"Pizza Margherita","price":8.5,"category":"pizza","restaurant":"Mama Mia","type":"product"},
	{"id":"p2","name":"Cheeseburger","price":6.0,"category":"burgers","restaurant":"Burger Barn","type":"product"},
	{"id":"c1","name":"Pizza","type":"category"},
	{"id":"r1","name":"Mama Mia","type":"restaurant"}
]`

func newTestLoader(t *testing.T, handler http.HandlerFunc) (*Loader, *httptest.Server, *atomic.Int32) {
	t.Helper()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	apiClient, err := client.New(client.DefaultConfig(server.URL))
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}

	return NewLoader(apiClient, cache.NewMemoryStore(cache.DefaultTTL)), server, &requests
}

func serveProducts(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(productsBody))
}

func TestLoader_Load_FiltersDiscriminator(t *testing.T) {
	loader, _, _ := newTestLoader(t, serveProducts)

	items, err := loader.Load(context.Background(), Products())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 products after discriminator filter, got %d", len(items))
	}
	for _, item := range items {
		if !item.IsProduct() {
			t.Errorf("Non-product item %q survived the filter", item.ID)
		}
	}
}

func TestLoader_Load_CacheHitSkipsNetwork(t *testing.T) {
	loader, _, requests := newTestLoader(t, serveProducts)
	ctx := context.Background()

	if _, err := loader.Load(ctx, Products()); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if _, err := loader.Load(ctx, Products()); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("Request count = %d, want 1 (second load must hit the cache)", got)
	}
}

func TestLoader_Load_ForceRefreshBypassesCache(t *testing.T) {
	loader, _, requests := newTestLoader(t, serveProducts)
	ctx := context.Background()

	if _, err := loader.Load(ctx, Products()); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	if _, err := loader.Load(ctx, Products(), WithForceRefresh()); err != nil {
		t.Fatalf("Forced load failed: %v", err)
	}

	if got := requests.Load(); got != 2 {
		t.Errorf("Request count = %d, want 2 (force refresh must hit the network)", got)
	}
}

func TestLoader_Load_FailureLeavesCacheUntouched(t *testing.T) {
	var fail atomic.Bool
	loader, _, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serveProducts(w, r)
	})
	ctx := context.Background()

	if _, err := loader.Load(ctx, Products()); err != nil {
		t.Fatalf("First load failed: %v", err)
	}

	// The forced refresh fails; the cached collection must survive.
	fail.Store(true)
	if _, err := loader.Load(ctx, Products(), WithForceRefresh()); err == nil {
		t.Fatal("Expected error from failing refresh")
	}

	items, err := loader.Load(ctx, Products())
	if err != nil {
		t.Fatalf("Load after failed refresh: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Cached collection poisoned: got %d items", len(items))
	}
}

func TestLoader_Load_PublishesFacets(t *testing.T) {
	loader, _, _ := newTestLoader(t, serveProducts)

	if _, err := loader.Load(context.Background(), Products()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	facets, ok := loader.Facets(Products())
	if !ok {
		t.Fatal("Facets not published after product load")
	}
	if facets.Restaurants[0] != All {
		t.Errorf("Facet restaurants not prefixed with sentinel: %v", facets.Restaurants)
	}
	if len(facets.Restaurants) != 3 {
		t.Errorf("Restaurants = %v, want sentinel + 2 names", facets.Restaurants)
	}
	if facets.MaxPrice != 8.5 {
		t.Errorf("MaxPrice = %v, want 8.5", facets.MaxPrice)
	}
}

func TestLoader_Facets_ScopedLoadKeepsFullCollectionFacets(t *testing.T) {
	loader, _, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/products/by-restaurant/1" {
			w.Write([]byte(`[{"id":"p2","name":"Cheeseburger","price":6.0,"restaurant":"Burger Barn","type":"product"}]`))
			return
		}
		w.Write([]byte(productsBody))
	})
	ctx := context.Background()

	if _, err := loader.Load(ctx, Products()); err != nil {
		t.Fatalf("Load products failed: %v", err)
	}
	if _, err := loader.Load(ctx, ProductsByRestaurant("1")); err != nil {
		t.Fatalf("Load scoped failed: %v", err)
	}

	// The full collection keeps its own facets; the scoped load has
	// separate ones under its own identity.
	full, ok := loader.Facets(Products())
	if !ok {
		t.Fatal("Full-collection facets missing after scoped load")
	}
	if full.MaxPrice != 8.5 {
		t.Errorf("Full-collection MaxPrice = %v after scoped load, want 8.5", full.MaxPrice)
	}
	if len(full.Restaurants) != 3 {
		t.Errorf("Full-collection Restaurants = %v, want sentinel + 2 names", full.Restaurants)
	}

	scoped, ok := loader.Facets(ProductsByRestaurant("1"))
	if !ok {
		t.Fatal("Scoped facets missing")
	}
	if scoped.MaxPrice != 6.0 {
		t.Errorf("Scoped MaxPrice = %v, want 6.0", scoped.MaxPrice)
	}
}

func TestLoader_Facets_PublishedOnCacheHit(t *testing.T) {
	store := cache.NewMemoryStore(cache.DefaultTTL)

	server := httptest.NewServer(http.HandlerFunc(serveProducts))
	t.Cleanup(server.Close)

	apiClient, err := client.New(client.DefaultConfig(server.URL))
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}

	// Warm the shared store through one loader, then start fresh, the
	// way a restarted proxy over a warm redis cache does.
	if _, err := NewLoader(apiClient, store).Load(context.Background(), Products()); err != nil {
		t.Fatalf("Warmup load failed: %v", err)
	}

	loader := NewLoader(apiClient, store)
	if _, ok := loader.Facets(Products()); ok {
		t.Fatal("Fresh loader must start without facets")
	}

	if _, err := loader.Load(context.Background(), Products()); err != nil {
		t.Fatalf("Cache-hit load failed: %v", err)
	}

	facets, ok := loader.Facets(Products())
	if !ok {
		t.Fatal("Facets not published by a cache-hit load")
	}
	if facets.MaxPrice != 8.5 {
		t.Errorf("MaxPrice = %v, want 8.5", facets.MaxPrice)
	}
}

func TestLoader_Load_CoalescesConcurrentFetches(t *testing.T) {
	release := make(chan struct{})
	loader, _, requests := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		serveProducts(w, r)
	})
	ctx := context.Background()

	const concurrent = 8
	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	counts := make([]int, concurrent)

	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := loader.Load(ctx, Products())
			errs[i] = err
			counts[i] = len(items)
		}(i)
	}

	// Let the callers pile up on the in-flight fetch before the
	// server responds.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < concurrent; i++ {
		if errs[i] != nil {
			t.Fatalf("Load %d failed: %v", i, errs[i])
		}
		if counts[i] != 2 {
			t.Errorf("Load %d returned %d items, want 2", i, counts[i])
		}
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("Request count = %d, want 1 (concurrent loads must coalesce)", got)
	}
}

func TestLoader_Load_RestaurantScopedKeyIsDistinct(t *testing.T) {
	loader, _, requests := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/products/by-restaurant/42" {
			w.Write([]byte(`[{"id":"p9","name":"House Special","price":15,"restaurant":"42","type":"product"}]`))
			return
		}
		w.Write([]byte(productsBody))
	})
	ctx := context.Background()

	if _, err := loader.Load(ctx, Products()); err != nil {
		t.Fatalf("Load products failed: %v", err)
	}

	scoped, err := loader.Load(ctx, ProductsByRestaurant("42"))
	if err != nil {
		t.Fatalf("Load scoped failed: %v", err)
	}

	if len(scoped) != 1 || scoped[0].ID != "p9" {
		t.Errorf("Scoped collection = %+v, want the restaurant-scoped item", scoped)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("Request count = %d, want 2 (scoped key must not collide)", got)
	}
}

func TestLoader_LoadItem(t *testing.T) {
	loader, _, requests := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/products/p1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.Write([]byte(`{"id":"p1","name":"Pizza Margherita","price":8.5,"restaurant":"Mama Mia"}`))
	})
	ctx := context.Background()

	item, err := loader.LoadItem(ctx, "p1")
	if err != nil {
		t.Fatalf("LoadItem failed: %v", err)
	}
	if item.Name != "Pizza Margherita" || item.Price != 8.5 {
		t.Errorf("Item = %+v, want the fetched product", item)
	}

	// Second lookup is served from the cache.
	if _, err := loader.LoadItem(ctx, "p1"); err != nil {
		t.Fatalf("Cached LoadItem failed: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("Request count = %d, want 1 (second lookup must hit the cache)", got)
	}

	if _, err := loader.LoadItem(ctx, "missing"); err == nil {
		t.Fatal("Expected error for unknown product")
	}
}

func TestLoader_LoadAll(t *testing.T) {
	loader, _, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products":
			w.Write([]byte(productsBody))
		case "/api/categories":
			w.Write([]byte(`[{"id":"c1","name":"Pizza","type":"category"}]`))
		case "/api/restaurants":
			w.Write([]byte(`[{"id":"r1","name":"Mama Mia","type":"restaurant"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	collections, err := loader.LoadAll(context.Background(), Products(), Categories(), Restaurants())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(collections) != 3 {
		t.Fatalf("Expected 3 collections, got %d", len(collections))
	}
	if len(collections["products"]) != 2 {
		t.Errorf("products = %d items, want 2", len(collections["products"]))
	}
	if len(collections["categories"]) != 1 {
		t.Errorf("categories = %d items, want 1", len(collections["categories"]))
	}
}

func TestLoader_LoadAll_PartialFailure(t *testing.T) {
	loader, _, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/restaurants" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serveProducts(w, r)
	})

	collections, err := loader.LoadAll(context.Background(), Products(), Restaurants())
	if err == nil {
		t.Fatal("Expected error for failed resource")
	}

	// The successful collection is still returned.
	if len(collections["products"]) != 2 {
		t.Errorf("products = %d items, want 2 despite partial failure", len(collections["products"]))
	}
	if _, ok := collections["restaurants"]; ok {
		t.Error("Failed resource must not appear in results")
	}
}
