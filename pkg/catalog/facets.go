package catalog

import (
	"sort"
)

// DeriveFacets computes the filter facets for a product collection:
// the distinct restaurant names (sorted, prefixed with the "all"
// sentinel) and the maximum observed price.
func DeriveFacets(items []Item) Facets {
	seen := make(map[string]struct{})
	maxPrice := 0.0

	for _, item := range items {
		if item.Restaurant != "" {
			seen[item.Restaurant] = struct{}{}
		}
		if item.Price > maxPrice {
			maxPrice = item.Price
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return Facets{
		Restaurants: append([]string{All}, names...),
		MaxPrice:    maxPrice,
	}
}
