package schema

import "sort"

// levenshteinDistance computes the Levenshtein edit distance between two strings.
func levenshteinDistance(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)
	aLen := len(aRunes)
	bLen := len(bRunes)

	if aLen == 0 {
		return bLen
	}
	if bLen == 0 {
		return aLen
	}

	// Two rolling rows; the shorter string drives the inner loop.
	if aLen > bLen {
		aRunes, bRunes = bRunes, aRunes
		aLen, bLen = bLen, aLen
	}

	prevRow := make([]int, aLen+1)
	currRow := make([]int, aLen+1)

	for i := 0; i <= aLen; i++ {
		prevRow[i] = i
	}

	for j := 1; j <= bLen; j++ {
		currRow[0] = j
		for i := 1; i <= aLen; i++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}

			currRow[i] = min(prevRow[i]+1, currRow[i-1]+1, prevRow[i-1]+cost)
		}
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[aLen]
}

// similarity is 1 - distance/maxLen, in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	aLen := len([]rune(a))
	bLen := len([]rune(b))

	maxLen := aLen
	if bLen > maxLen {
		maxLen = bLen
	}

	if maxLen == 0 {
		return 1.0
	}

	dist := levenshteinDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// suggestionThreshold is the minimum similarity for a header to be offered
// as a likely intended column.
const suggestionThreshold = 0.6

// Suggest returns the headers closest to a missing column name, best first,
// compared in normalized form. At most two are returned.
func Suggest(headers []string, missing string) []string {
	target := normalizeHeader(missing)
	if target == "" {
		return nil
	}

	type scored struct {
		header string
		score  float64
	}
	var candidates []scored
	for _, h := range headers {
		if score := similarity(target, normalizeHeader(h)); score >= suggestionThreshold {
			candidates = append(candidates, scored{header: h, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var out []string
	for i, c := range candidates {
		if i == 2 {
			break
		}
		out = append(out, c.header)
	}
	return out
}
