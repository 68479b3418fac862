package search

import "strings"

// similarity returns a Ratcliff/Obershelp ratio in [0, 1]: twice the total
// matched character count over the combined length.
func similarity(a, b string) float64 {
	left := []rune(strings.ToLower(strings.TrimSpace(a)))
	right := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	matched := matchedLength(left, right)
	return 2 * float64(matched) / float64(len(left)+len(right))
}

// matchedLength finds the longest common substring, then recurses into the
// pieces on either side of it.
func matchedLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchedLength(a[:ai], b[:bi]) +
		matchedLength(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			current := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = current
		}
	}
	return bestA, bestB, bestSize
}

// tokenOverlap returns the share of query tokens present in the name.
func tokenOverlap(query, name string) float64 {
	queryTokens := strings.Fields(strings.ToLower(query))
	if len(queryTokens) == 0 {
		return 0
	}
	nameTokens := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(name)) {
		nameTokens[token] = struct{}{}
	}
	hits := 0
	for _, token := range queryTokens {
		if _, ok := nameTokens[token]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}
