package service

import (
	"sort"
	"strings"
)

const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
	// candidates pulled from storage before ranking
	suggestionPool = 200
)

func suggestionLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSuggestionLimit
	case limit > maxSuggestionLimit:
		return maxSuggestionLimit
	default:
		return limit
	}
}

// rankSuggestions moves names starting with query ahead of names that merely
// contain it, keeping the incoming order otherwise, and drops duplicates.
func rankSuggestions(names []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(out[i]), q)
		pj := strings.HasPrefix(strings.ToLower(out[j]), q)
		return pi && !pj
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
