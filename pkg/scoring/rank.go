package scoring

import (
	"sort"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// TopN is how many keywords each strategy list keeps.
const TopN = 10

// ScoredKeyword is a keyword with the score one strategy gave it.
type ScoredKeyword struct {
	keyword.Record
	Signals Signals `json:"signals"`
	Score   float64 `json:"score"`
}

// Rank returns the TopN highest scoring keywords.
func Rank(scored []ScoredKeyword) []ScoredKeyword {
	return RankN(scored, TopN)
}

// RankN sorts a copy of scored by score descending and keeps the first n.
// The sort is stable so ties keep batch order.
func RankN(scored []ScoredKeyword, n int) []ScoredKeyword {
	out := make([]ScoredKeyword, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
