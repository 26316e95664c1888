package ui

import (
	"sort"
	"strings"
)

// MaxSuggestionDistance is the largest edit distance still worth suggesting
const MaxSuggestionDistance = 3

// Suggest returns up to limit candidates close to target, closest first.
// Qualified native names also match on their last component, so "Widgt"
// finds "gfx::Widget".
func Suggest(target string, candidates []string, limit int) []string {
	type match struct {
		value    string
		distance int
	}

	target = strings.ToLower(target)
	var matches []match
	for _, c := range candidates {
		lower := strings.ToLower(c)
		d := EditDistance(target, lower)
		if i := strings.LastIndex(lower, "::"); i >= 0 {
			if short := EditDistance(target, lower[i+2:]); short < d {
				d = short
			}
		}
		if d <= MaxSuggestionDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	out := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, m.value)
	}
	return out
}

// EditDistance is the Levenshtein distance between a and b in bytes
func EditDistance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
