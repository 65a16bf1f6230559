package catalog

import (
	"github.com/feastly/catalog-client/pkg/cache"
)

// Resource names a storefront collection to load. The storefront does
// no server-side pagination: each resource is a full collection fetched
// in one request.
type Resource struct {
	// Name is the logical resource key used for caching and facets.
	Name string

	// Path is the storefront endpoint path.
	Path string

	// Params narrow the collection (e.g. a restaurant scope). They are
	// part of the cache identity.
	Params map[string]string

	// Discriminator, when set, keeps only items whose Type matches it
	// (items with an empty Type always pass). Category and restaurant
	// records sharing a product endpoint are dropped this way.
	Discriminator string

	// UserID scopes authenticated responses.
	UserID string
}

// Products is the full sellable-product collection.
func Products() Resource {
	return Resource{
		Name:          "products",
		Path:          "/products",
		Discriminator: TypeProduct,
	}
}

// ProductsByRestaurant is the product collection scoped to one
// restaurant.
func ProductsByRestaurant(restaurantID string) Resource {
	return Resource{
		Name:          "products",
		Path:          "/products/by-restaurant/" + restaurantID,
		Params:        map[string]string{"restaurant": restaurantID},
		Discriminator: TypeProduct,
	}
}

// Product is a single catalog item by id.
func Product(id string) Resource {
	return Resource{
		Name:   "product",
		Path:   "/api/products/" + id,
		Params: map[string]string{"id": id},
	}
}

// ProductCategories is the category list served from the product
// surface.
func ProductCategories() Resource {
	return Resource{
		Name: "product-categories",
		Path: "/products/categories",
	}
}

// Categories is the canonical category collection.
func Categories() Resource {
	return Resource{
		Name: "categories",
		Path: "/api/categories",
	}
}

// Restaurants is the restaurant collection.
func Restaurants() Resource {
	return Resource{
		Name: "restaurants",
		Path: "/api/restaurants",
	}
}

// cacheKey returns the cache identity for the resource.
func (r Resource) cacheKey() cache.Key {
	return cache.Key{
		Resource: r.Name,
		Params:   r.Params,
		UserID:   r.UserID,
	}
}
