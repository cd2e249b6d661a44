// Package search narrows cached collections. Text is the free-text overlay
// applied locally to any collection; OrderFilters is the structured order
// search that the backend evaluates and that Match mirrors locally.
package search

import "strings"

// Searchable exposes the scalar fields a free-text query looks into.
type Searchable interface {
	SearchFields() []string
}

// Text returns the items with at least one field containing query,
// case-insensitively, in input order. An empty query returns items itself.
func Text[T Searchable](items []T, query string) []T {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)

	out := make([]T, 0, len(items))
	for _, it := range items {
		if matchesAny(it.SearchFields(), q) {
			out = append(out, it)
		}
	}
	return out
}

func matchesAny(fields []string, lowerQuery string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}
