package cache

import (
	"time"
)

// DefaultTTL is the freshness window for cached storefront responses.
// The storefront API serves no cache validators, so the window is a
// fixed client-side interval.
const DefaultTTL = 5 * time.Minute

// Entry represents a cached storefront response.
type Entry struct {
	// Payload is the JSON-encoded response body.
	Payload []byte `json:"payload"`

	// FetchedAt is when the payload was fetched from the storefront API.
	FetchedAt time.Time `json:"fetched_at"`
}

// Fresh reports whether the entry is still inside the freshness window
// at the given instant. A non-fresh entry must be treated as a miss.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// Age returns how long ago the entry was fetched.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
