// Package filter provides the composable search/category/restaurant/
// price/rating filter chain and the stable sort applied to catalog
// collections before pagination.
package filter

import (
	"github.com/feastly/catalog-client/pkg/catalog"
)

// Sort enumerates the supported orderings.
type Sort string

const (
	// SortNameAsc is the default ordering.
	SortNameAsc  Sort = "name-asc"
	SortNameDesc Sort = "name-desc"

	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"

	// Rating sorts treat a missing rating as 0.
	SortRatingAsc  Sort = "rating-asc"
	SortRatingDesc Sort = "rating-desc"
)

// ParseSort maps a sort name to a Sort, falling back to name-ascending
// for unknown or empty values.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortRatingAsc, SortRatingDesc:
		return Sort(s)
	default:
		return SortNameAsc
	}
}

// Range is an inclusive price range. Construction through NewRange
// guarantees Min <= Max. The zero Range means "no price constraint".
type Range struct {
	Min float64
	Max float64
}

// NewRange builds a price range, swapping the bounds if they arrive
// reversed so that Min <= Max always holds.
func NewRange(min, max float64) Range {
	if min > max {
		min, max = max, min
	}
	return Range{Min: min, Max: max}
}

// IsZero reports whether the range is unconstrained.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains reports whether price falls inside the inclusive bounds.
func (r Range) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Spec is a complete filter/sort specification. Zero values disable
// each dimension: empty search term, "all" (or empty) category and
// restaurant, zero price range, zero rating threshold.
type Spec struct {
	// Search is a case-insensitive substring matched against name or
	// description.
	Search string

	// Category constrains by exact category; the "all" sentinel (or
	// empty string) disables the constraint.
	Category string

	// Restaurant constrains by exact restaurant reference; "all" or
	// empty disables it.
	Restaurant string

	// Price is the inclusive price window.
	Price Range

	// MinRating keeps items whose rating (missing counted as 0) is at
	// least this threshold. 0 is a no-op.
	MinRating float64

	// Sort selects the ordering; the zero value sorts by name
	// ascending.
	Sort Sort
}

// DefaultSpec returns the spec the storefront opens with: everything
// unconstrained, price window seeded from the loaded collection's
// maximum price, name-ascending order.
func DefaultSpec(maxPrice float64) Spec {
	return Spec{
		Category:   catalog.All,
		Restaurant: catalog.All,
		Price:      NewRange(0, maxPrice),
		Sort:       SortNameAsc,
	}
}
