package schema

import (
	"strings"
)

// Resolve maps each wanted column name onto a header of the file. An exact
// match (after trimming) wins; otherwise the first header whose normalized
// form equals the normalized wanted name is used, so "Work Email" satisfies
// "work_email". Wanted names with no match are returned in missing, in the
// order they were asked for. Empty wanted names are ignored.
func Resolve(headers []string, wanted ...string) (resolved map[string]string, missing []string) {
	resolved = make(map[string]string, len(wanted))

	exact := make(map[string]bool, len(headers))
	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		exact[h] = true
		key := normalizeHeader(h)
		if _, ok := normalized[key]; !ok {
			normalized[key] = h
		}
	}

	for _, w := range wanted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, done := resolved[w]; done {
			continue
		}
		if exact[w] {
			resolved[w] = w
			continue
		}
		if h, ok := normalized[normalizeHeader(w)]; ok {
			resolved[w] = h
			continue
		}
		missing = append(missing, w)
	}

	return resolved, missing
}

// DuplicateHeaders returns header names that occur more than once.
func DuplicateHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	var dups []string
	for _, h := range headers {
		seen[h]++
		if seen[h] == 2 {
			dups = append(dups, h)
		}
	}
	return dups
}

// normalizeHeader lowercases a header string and strips whitespace, underscores, and hyphens.
func normalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
