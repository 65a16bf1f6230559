// Package testutil provides testing utilities for the catalog client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock storefront endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockStorefront is a configurable mock storefront API server for testing.
// Without custom handlers it serves a small seeded catalog on the standard
// endpoints.
type MockStorefront struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	PathCounts        map[string]int
	LastRequestHeader http.Header
}

// NewMockStorefront creates a new mock storefront server.
func NewMockStorefront() *MockStorefront {
	mock := &MockStorefront{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockStorefront) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockStorefront) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockStorefront) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockStorefront) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockStorefront) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockStorefront) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to a specific path.
func (m *MockStorefront) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// SeedProducts is the default product list served on /products. It mixes
// product rows with category and restaurant rows, the way the storefront
// returns its combined feed.
const SeedProducts = `[
	{"id":"p-1","name":"Margherita Pizza","description":"Tomato, mozzarella, basil","price":11.5,"category":"pizza","restaurant":"Mama Mia","rating":4.6},
	{"id":"p-2","name":"Pepperoni Pizza","description":"Spicy pepperoni","price":13.0,"category":"pizza","restaurant":"Mama Mia","rating":4.2},
	{"id":"p-3","name":"Classic Burger","description":"Beef patty, cheddar","price":9.0,"category":"burgers","restaurant":"Grill House","rating":4.8},
	{"id":"p-4","name":"Veggie Bowl","description":"Quinoa, avocado, greens","price":10.5,"category":"bowls","restaurant":"Green Bowl"},
	{"id":"c-1","name":"pizza","type":"category"},
	{"id":"c-2","name":"burgers","type":"category"},
	{"id":"r-1","name":"Mama Mia","type":"restaurant"},
	{"id":"r-2","name":"Grill House","type":"restaurant"}
]`

// SeedCategories is the default list served on /api/categories.
const SeedCategories = `[
	{"id":"c-1","name":"pizza","type":"category"},
	{"id":"c-2","name":"burgers","type":"category"},
	{"id":"c-3","name":"bowls","type":"category"}
]`

// SeedRestaurants is the default list served on /api/restaurants.
const SeedRestaurants = `[
	{"id":"r-1","name":"Mama Mia","type":"restaurant"},
	{"id":"r-2","name":"Grill House","type":"restaurant"},
	{"id":"r-3","name":"Green Bowl","type":"restaurant"}
]`

// defaultHandler serves the seeded storefront endpoints.
func (m *MockStorefront) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch {
	case r.URL.Path == "/products":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(SeedProducts))
	case r.URL.Path == "/api/categories" || r.URL.Path == "/products/categories":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(SeedCategories))
	case r.URL.Path == "/api/restaurants":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(SeedRestaurants))
	case r.URL.Path == "/api/products/p-1":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"p-1","name":"Margherita Pizza","description":"Tomato, mozzarella, basil","price":11.5,"category":"pizza","restaurant":"Mama Mia","rating":4.6}`))
	case r.URL.Path == "/products/by-restaurant/r-3":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"id":"p-4","name":"Veggie Bowl","description":"Quinoa, avocado, greens","price":10.5,"category":"bowls","restaurant":"Green Bowl"}]`))
	case r.URL.Path == "/api/auth/login" && r.Method == http.MethodPost:
		m.handleLogin(w, r)
	case r.URL.Path == "/api/firms/by-user/user-1":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"firm-1","name":"Mama Mia"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}
}

// handleLogin accepts the seeded credentials vendor/secret.
func (m *MockStorefront) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"malformed credentials"}`))
		return
	}

	if creds.Username != "vendor" || creds.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"token":"seed-token","userId":"user-1","username":"vendor"}`))
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message":"not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
