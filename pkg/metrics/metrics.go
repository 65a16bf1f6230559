// Package metrics provides the centralized Prometheus metrics registry for
// the catalog client. All metrics are defined in their respective packages
// (client, cache, catalog) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the catalog client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{backend} (Counter): Cache hits by backend (memory, redis)
//   - catalog_cache_misses_total (Counter): Cache misses, stale entries included
//   - catalog_cache_written_bytes_total{backend} (Counter): Cumulative payload bytes written
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - catalog_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, decode, network)
//
// Retry Metrics (pkg/client, opt-in, disabled by default):
//   - catalog_retries_total{error_class} (Counter): Retry attempts by error class
//   - catalog_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - catalog_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Loader Metrics (pkg/catalog):
//   - catalog_loads_total{resource, source} (Counter): Loads by resource and source (cache, network)
//   - catalog_inflight_coalesced_total (Counter): Loads served by joining an in-flight fetch
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(catalog_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//   # Share of loads answered without a network round trip
//   sum(rate(catalog_loads_total{source="cache"}[5m])) /
//   sum(rate(catalog_loads_total[5m]))
