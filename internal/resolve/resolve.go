// Package resolve finds columns by keyword in headers whose exact spelling
// varies between exports.
package resolve

import (
	"regexp"
	"strings"
)

var (
	separators  = strings.NewReplacer("_", " ", "-", " ")
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Find returns the first column, by position, that contains every keyword
// case-insensitively. Matching loosens in tiers: raw names, then names with
// '_' and '-' read as spaces, then (for a single keyword) names and keyword
// with all punctuation folded to single spaces. The first tier with a match
// decides.
func Find(columns []string, keywords ...string) (string, bool) {
	if len(keywords) == 0 {
		return "", false
	}

	upper := make([]string, len(keywords))
	for i, k := range keywords {
		upper[i] = strings.ToUpper(k)
	}

	if c, ok := first(columns, upper, strings.ToUpper); ok {
		return c, true
	}

	if c, ok := first(columns, upper, func(c string) string {
		return strings.ToUpper(separators.Replace(c))
	}); ok {
		return c, true
	}

	if len(upper) != 1 {
		return "", false
	}

	kw := fold(upper[0])
	if kw == "" {
		return "", false
	}

	return first(columns, []string{kw}, fold)
}

// FindFirst tries each keyword set in order and returns the first hit.
func FindFirst(columns []string, sets ...[]string) (string, bool) {
	for _, kw := range sets {
		if c, ok := Find(columns, kw...); ok {
			return c, true
		}
	}

	return "", false
}

func first(columns, keywords []string, norm func(string) string) (string, bool) {
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			continue
		}

		n := norm(c)
		if containsAll(n, keywords) {
			return c, true
		}
	}

	return "", false
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}

	return true
}

func fold(s string) string {
	return strings.TrimSpace(punctuation.ReplaceAllString(strings.ToUpper(s), " "))
}
