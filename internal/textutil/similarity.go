// Package textutil provides the token-set similarity measure shared by task
// synthesis and conflict detection.
package textutil

import "strings"

// Tokens returns the set of lower-cased whitespace-separated words in text.
func Tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard computes |intersection| / |union| over the token sets of two
// strings. Returns 0 when either string has no tokens.
func Jaccard(a, b string) float64 {
	ta := Tokens(a)
	tb := Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}
