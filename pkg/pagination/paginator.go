package pagination

// DefaultPageSize is the storefront's product-grid page size.
const DefaultPageSize = 9

// windowSize is the maximum number of page links shown.
const windowSize = 5

// Result is one page of a collection.
type Result[T any] struct {
	// Items is the page slice; empty when Number lies beyond
	// TotalPages.
	Items []T

	// Number is the 1-based page number after clamping to >= 1.
	Number int

	// TotalPages is ceil(len(collection) / size), minimum 1 even for
	// an empty collection.
	TotalPages int
}

// Page slices the collection into the requested 1-based page. Page
// numbers below 1 are clamped to 1; a page beyond the last yields an
// empty Items slice rather than an error.
func Page[T any](items []T, number, size int) Result[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}

	total := TotalPages(len(items), size)

	start := (number - 1) * size
	if start >= len(items) {
		return Result[T]{Items: []T{}, Number: number, TotalPages: total}
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return Result[T]{Items: items[start:end], Number: number, TotalPages: total}
}

// TotalPages returns ceil(count / size), minimum 1.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Window returns the page numbers to display: up to 5, centered on
// current when possible, shifted toward the start or end when current
// sits near a boundary of [1, total].
func Window(current, total int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := current - windowSize/2
	if start < 1 {
		start = 1
	}

	end := start + windowSize - 1
	if end > total {
		end = total
		start = end - windowSize + 1
		if start < 1 {
			start = 1
		}
	}

	window := make([]int, 0, end-start+1)
	for page := start; page <= end; page++ {
		window = append(window, page)
	}
	return window
}
