// Package pagination slices filtered catalog collections into pages.
//
// The storefront API honors no pagination parameters server-side:
// collections arrive whole, and paging happens entirely on the client
// over the filtered, sorted subset. This package provides the slice
// math and the page-number window shown by the UI.
//
// Example usage:
//
//	page := pagination.Page(items, 2, pagination.DefaultPageSize)
//	window := pagination.Window(page.Number, page.TotalPages)
//
// The page window shows up to 5 page numbers, centered on the current
// page when possible and shifted at either boundary.
package pagination
