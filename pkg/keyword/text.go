package keyword

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText is the lookup key for a keyword: NFKC, case folded, single spaced.
// A Caser is stateful, so each call gets its own.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// ContainsAny reports whether the lowercased text contains any of terms.
// Terms must already be lowercase.
func ContainsAny(lowerText string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lowerText, t) {
			return true
		}
	}
	return false
}
