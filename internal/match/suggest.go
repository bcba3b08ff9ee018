package match

import (
	"sort"
	"strings"
)

// MinSimilarity is the lowest similarity score a candidate needs to be
// suggested.
const MinSimilarity = 0.6

// Distance computes the optimal string alignment distance between a and b:
// Levenshtein edits plus transposition of two adjacent runes, each costing
// one. No substring is edited twice, so "ca" -> "abc" costs 3.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	// Three rolling rows: j-2, j-1 and j.
	back := make([]int, len(ra)+1)
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)

			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[i] = min(curr[i], back[i-2]+1)
			}
		}

		back, prev, curr = prev, curr, back
	}

	return prev[len(ra)]
}

// Normalize folds case and drops '_', '-' and spaces so that "one_of",
// "OneOf" and "oneof" compare equal.
func Normalize(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// Similarity returns 1 - distance/maxLen over normalized names; 1.0 means
// identical after normalization.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" && nb == "" {
		return 1.0
	}

	maxLen := max(len([]rune(na)), len([]rune(nb)))

	return 1.0 - float64(Distance(na, nb))/float64(maxLen)
}

// Suggest returns the candidate closest to name, if any scores at least
// MinSimilarity. Ties are broken alphabetically so results are stable.
func Suggest(name string, candidates []string) (string, bool) {
	type scored struct {
		name  string
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c == name {
			continue
		}

		ranked = append(ranked, scored{c, Similarity(name, c)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	if len(ranked) == 0 || ranked[0].score < MinSimilarity {
		return "", false
	}

	return ranked[0].name, true
}
