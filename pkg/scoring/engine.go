// Package scoring ranks a keyword batch under several advertising and SEO
// strategies. Every strategy is a fixed-weight blend of batch-normalized
// signals with an optional filter; results are independent top-N lists.
package scoring

import (
	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Result is one strategy's ranked list.
type Result struct {
	Slug     string          `json:"slug"`
	Strategy string          `json:"strategy"`
	Results  []ScoredKeyword `json:"results"`
}

// Engine scores batches. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	brand string
	topN  int
}

// NewEngine creates an engine for the given brand name. topN <= 0 means TopN.
func NewEngine(brand string, topN int) *Engine {
	if topN <= 0 {
		topN = TopN
	}
	return &Engine{brand: brand, topN: topN}
}

// ScoreAndRank returns the top 10 list of every strategy for the batch.
func ScoreAndRank(records []keyword.Record, brand string) []Result {
	return NewEngine(brand, TopN).Run(records)
}

// Run scores the batch under every strategy, in Strategies() order.
func (e *Engine) Run(records []keyword.Record) []Result {
	batch := NewBatch(records, e.brand)
	strategies := Strategies()
	results := make([]Result, 0, len(strategies))
	for _, s := range strategies {
		results = append(results, e.rank(batch, s))
	}
	return results
}

// RunStrategy scores the batch under a single strategy.
func (e *Engine) RunStrategy(records []keyword.Record, s *Strategy) Result {
	return e.rank(NewBatch(records, e.brand), s)
}

func (e *Engine) rank(b *Batch, s *Strategy) Result {
	return Result{
		Slug:     s.Slug,
		Strategy: s.Name,
		Results:  RankN(Score(b, s), e.topN),
	}
}

// Score filters the batch with the strategy and scores what is left, in
// batch order.
func Score(b *Batch, s *Strategy) []ScoredKeyword {
	scored := make([]ScoredKeyword, 0, len(b.Candidates))
	for i := range b.Candidates {
		c := &b.Candidates[i]
		if !s.Allows(c, b) {
			continue
		}
		scored = append(scored, ScoredKeyword{
			Record:  c.Record,
			Signals: c.Signals,
			Score:   s.Score(c),
		})
	}
	return scored
}
