package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Key identifies a cached storefront collection.
type Key struct {
	// Resource is the logical collection name (e.g. "products",
	// "categories", "restaurants").
	Resource string

	// Params narrow the collection (e.g. {"restaurant": "42"} for a
	// restaurant-scoped product listing).
	Params map[string]string

	// UserID scopes authenticated responses (empty for public data).
	UserID string
}

// String generates a deterministic cache key string.
// Format: catalog:resource:param1=val1:param2=val2:user=abc
//
// Example:
//
//	catalog:products:restaurant=42
func (k Key) String() string {
	parts := []string{"catalog"}

	resource := strings.Trim(k.Resource, "/")
	if resource != "" {
		parts = append(parts, resource)
	}

	// Params sorted for determinism
	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Params[name]))
		}
	}

	if k.UserID != "" {
		parts = append(parts, fmt.Sprintf("user=%s", k.UserID))
	}

	return strings.Join(parts, ":")
}
