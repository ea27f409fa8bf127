package catalog

import (
	"sort"
	"strings"
)

// SortOrder selects a product listing order.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// ParseSortOrder maps a query value to a sort order, defaulting to the
// catalog's own ordering for unknown values.
func ParseSortOrder(value string) SortOrder {
	switch SortOrder(strings.TrimSpace(value)) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return SortOrder(strings.TrimSpace(value))
	default:
		return SortDefault
	}
}

// Filter narrows products by search query, category, and inclusive price
// range. A blank query or category matches everything; a non-positive
// maxPrice disables the upper bound.
type Filter struct {
	Query    string
	Category string
	MinPrice float64
	MaxPrice float64
}

// Apply returns the products matching the filter, preserving input order.
func (f Filter) Apply(products []Product) []Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func matchesQuery(p Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Category), query)
}

// Sort orders products by the given sort order. The default order keeps the
// catalog's own ordering. Sorting is stable and does not mutate the input.
func Sort(products []Product, order SortOrder) []Product {
	sorted := append([]Product(nil), products...)
	switch order {
	case SortPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	case SortPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	case SortNameAsc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Title < sorted[j].Title })
	case SortNameDesc:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Title > sorted[j].Title })
	}
	return sorted
}

// Categories returns the sorted unique category names across products.
func Categories(products []Product) []string {
	seen := map[string]bool{}
	out := make([]string, 0, 4)
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
