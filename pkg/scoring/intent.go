package scoring

import (
	"regexp"
	"strings"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Intent term lists. All matching is case-insensitive substring containment
// against the whole keyword text.
var (
	// boostTransactional and boostCommercial drive the Best ROI intent boost.
	boostTransactional = []string{"buy", "purchase", "order", "shop", "sale", "subscription", "sign up"}
	boostCommercial    = []string{"price", "cost", "cheap", "deal", "discount", "best", "top", "review", "compare", "vs", "alternative"}

	// broadModifiers rescue short keywords from being ultra broad.
	broadModifiers = []string{"buy", "purchase", "best", "top", "cheap", "near me", "price", "cost", "deal", "discount", "review"}

	intentTransactional = []string{"buy", "purchase", "price", "cost", "cheap", "deal", "discount", "order", "shop", "sale", "subscription", "sign up"}
	intentCommercial    = []string{"best", "top", "review", "compare", "vs", "alternative"}
	intentLocal         = []string{"near me", "near", "nearby", "location"}
)

var titleCaseWord = regexp.MustCompile(`\b[A-Z][a-z]+`)

// IntentBoost is 0.5 for transactional keywords, 0.3 for commercial ones, else 0.
func IntentBoost(text string) float64 {
	lower := strings.ToLower(text)
	switch {
	case keyword.ContainsAny(lower, boostTransactional):
		return 0.5
	case keyword.ContainsAny(lower, boostCommercial):
		return 0.3
	}
	return 0
}

// IsUltraBroad: volume above the batch threshold, or fewer than three words
// with no commercial modifier.
func IsUltraBroad(r *keyword.Record, threshold float64) bool {
	if r.SearchVolume > threshold {
		return true
	}
	return r.WordCount() < 3 && !keyword.ContainsAny(strings.ToLower(r.Keyword), broadModifiers)
}

// HasLowIntent: no transactional, commercial or local term anywhere in the text.
func HasLowIntent(text string) bool {
	lower := strings.ToLower(text)
	return !keyword.ContainsAny(lower, intentTransactional) &&
		!keyword.ContainsAny(lower, intentCommercial) &&
		!keyword.ContainsAny(lower, intentLocal)
}

// IsSuspiciouslyBranded flags cheap, uncontested, huge keywords and anything
// written with a Title-Case word.
func IsSuspiciouslyBranded(r *keyword.Record) bool {
	if r.SearchVolume > 100000 && r.CompetitionIndex() < 33 && r.AvgCPC() < 1 {
		return true
	}
	return titleCaseWord.MatchString(r.Keyword)
}
