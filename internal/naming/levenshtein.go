package naming

import "sort"

// suggestThreshold is the minimum normalized similarity for a name to be
// offered as a suggestion.
const suggestThreshold = 0.5

// maxSuggestions caps the number of suggestions attached to an error.
const maxSuggestions = 3

// Levenshtein computes the Levenshtein distance (edit distance) between two strings.
// The distance is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to transform one string into the other.
//
// Time complexity: O(len(a) * len(b))
// Space complexity: O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// LevenshteinNormalized computes a normalized similarity score between 0 and 1.
// 1.0 means identical strings, 0.0 means completely different.
// The score is: 1 - (distance / max(len(a), len(b))).
func LevenshteinNormalized(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	maxLen := max(len(b), len(a))

	distance := Levenshtein(a, b)

	return 1.0 - float64(distance)/float64(maxLen)
}

// Suggest returns up to three candidates that look like name, best first.
// Candidates are compared after NormalizeIdent, so "UE5" matches "ue5".
func Suggest(name string, candidates []string) []string {
	type scored struct {
		name  string
		score float64
	}

	norm := NormalizeIdent(name)

	var ranked []scored

	for _, c := range candidates {
		score := LevenshteinNormalized(norm, NormalizeIdent(c))
		if score >= suggestThreshold {
			ranked = append(ranked, scored{name: c, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	out := make([]string, 0, min(len(ranked), maxSuggestions))
	for i := 0; i < len(ranked) && i < maxSuggestions; i++ {
		out = append(out, ranked[i].name)
	}

	return out
}
