package strings

import "fmt"

// Disambiguate makes names unique by appending _2, _3, ... to repeated
// entries. The first occurrence keeps its name and no suffixed name
// equals another input name.
func Disambiguate(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		if !seen[n] {
			seen[n] = true
			out[i] = n
			continue
		}
		for k := 2; ; k++ {
			candidate := fmt.Sprintf("%s_%d", n, k)
			if !taken[candidate] {
				taken[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
