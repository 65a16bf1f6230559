// Package catalog provides the storefront item model and the
// cache-backed catalog loader.
package catalog

import (
	"fmt"
)

// All is the sentinel value used by filter dimensions (category,
// restaurant) to mean "no constraint".
const All = "all"

// Item type discriminators. Collections fetched from the storefront may
// mix sellable products with category and restaurant records on the
// same endpoint; the Type field tells them apart. An empty Type means
// product (older storefront records carry no discriminator).
const (
	TypeProduct    = "product"
	TypeCategory   = "category"
	TypeRestaurant = "restaurant"
)

// Item represents a storefront catalog item: a sellable product, or a
// category/restaurant record sharing the same collection endpoint.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Restaurant  string  `json:"restaurant"`

	// Rating is optional; nil means never rated.
	Rating *float64 `json:"rating,omitempty"`

	Image string `json:"image,omitempty"`

	// Type discriminates product/category/restaurant records; empty
	// means product.
	Type string `json:"type,omitempty"`
}

// IsProduct reports whether the item is a sellable product.
func (i Item) IsProduct() bool {
	return i.Type == "" || i.Type == TypeProduct
}

// RatingOrZero returns the item's rating, treating a missing rating
// as 0.
func (i Item) RatingOrZero() float64 {
	if i.Rating == nil {
		return 0
	}
	return *i.Rating
}

// Validate checks the item invariants: non-negative price and, when
// present, a rating within [0, 5].
func (i Item) Validate() error {
	if i.Price < 0 {
		return fmt.Errorf("item %q: negative price %v", i.ID, i.Price)
	}
	if i.Rating != nil && (*i.Rating < 0 || *i.Rating > 5) {
		return fmt.Errorf("item %q: rating %v outside [0,5]", i.ID, *i.Rating)
	}
	return nil
}
