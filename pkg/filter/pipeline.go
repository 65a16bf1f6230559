package filter

import (
	"sort"
	"strings"

	"github.com/feastly/catalog-client/pkg/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Apply runs the filter chain over the collection and returns the
// ordered, filtered subset. The chain applies in a fixed order for
// reproducibility: search, category, restaurant, price, rating, then
// the stable sort. The predicates are independent, so the order does
// not affect set membership, only evaluation cost.
//
// Apply is pure: the input slice is never mutated, and applying the
// same spec twice yields identical output.
func Apply(items []catalog.Item, spec Spec) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))

	search := strings.ToLower(spec.Search)
	for _, item := range items {
		if !matchesSearch(item, search) {
			continue
		}
		if !matchesDimension(item.Category, spec.Category) {
			continue
		}
		if !matchesDimension(item.Restaurant, spec.Restaurant) {
			continue
		}
		if !spec.Price.IsZero() && !spec.Price.Contains(item.Price) {
			continue
		}
		if item.RatingOrZero() < spec.MinRating {
			continue
		}
		out = append(out, item)
	}

	sortItems(out, spec.Sort)
	return out
}

// matchesSearch is a case-insensitive substring match against name or
// description. An empty term matches everything.
func matchesSearch(item catalog.Item, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), search) ||
		strings.Contains(strings.ToLower(item.Description), search)
}

// matchesDimension is an exact match unless the selected value is the
// "all" sentinel (or unset).
func matchesDimension(value, selected string) bool {
	if selected == "" || selected == catalog.All {
		return true
	}
	return value == selected
}

// sortItems orders the slice in place. The sort is stable: ties keep
// their original relative order.
func sortItems(items []catalog.Item, by Sort) {
	switch by {
	case SortNameDesc:
		byName(items, false)
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price < items[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Price > items[j].Price
		})
	case SortRatingAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].RatingOrZero() < items[j].RatingOrZero()
		})
	case SortRatingDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].RatingOrZero() > items[j].RatingOrZero()
		})
	default:
		byName(items, true)
	}
}

// byName sorts by name with a locale-aware, case-insensitive collator.
// A collator is not safe for concurrent use, so each sort builds its
// own.
func byName(items []catalog.Item, ascending bool) {
	c := collate.New(language.Und, collate.Loose)
	sort.SliceStable(items, func(i, j int) bool {
		cmp := c.CompareString(items[i].Name, items[j].Name)
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}
