// Package radar ties the keyword store to the scoring and lifecycle engines.
package radar

import (
	"context"
	"errors"
	"fmt"

	"github.com/elonfeng/kwradar/internal/store"
	"github.com/elonfeng/kwradar/pkg/keyword"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
	"github.com/elonfeng/kwradar/pkg/scoring"
)

// ErrUnknownStrategy is returned by Rank for a slug no strategy uses.
var ErrUnknownStrategy = errors.New("unknown strategy")

// YoYMode decides whether classification uses the year-over-year rule set.
type YoYMode int

const (
	// YoYAuto uses YoY rules when any stored keyword has enough monthly history.
	YoYAuto YoYMode = iota
	YoYOn
	YoYOff
)

// Options configures an Analyzer.
type Options struct {
	Brand         string
	HistoryMonths int
	TopN          int
}

// Analyzer runs the engines over the stored batch.
type Analyzer struct {
	store         store.Store
	brand         string
	historyMonths int
	topN          int
}

// New creates an analyzer. Zero options fall back to the engine defaults.
func New(s store.Store, opts Options) *Analyzer {
	if opts.HistoryMonths <= 0 {
		opts.HistoryMonths = keyword.YoYHistoryMonths
	}
	if opts.TopN <= 0 {
		opts.TopN = scoring.TopN
	}
	return &Analyzer{
		store:         s,
		brand:         opts.Brand,
		historyMonths: opts.HistoryMonths,
		topN:          opts.TopN,
	}
}

// Analysis is the outcome of one classification pass.
type Analysis struct {
	KeywordCount int                       `json:"keyword_count"`
	HasYoYData   bool                      `json:"has_yoy_data"`
	Counts       []lifecycle.CategoryCount `json:"counts"`
	Assignments  lifecycle.Assignments     `json:"-"`
}

// Import stores records, optionally replacing the current batch first.
func (a *Analyzer) Import(ctx context.Context, records []keyword.Record, replace bool) (int, error) {
	if replace {
		if err := a.store.ClearKeywords(ctx); err != nil {
			return 0, err
		}
	}
	n, err := a.store.UpsertKeywords(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("import keywords: %w", err)
	}
	return n, nil
}

// Batch loads the stored keywords in import order.
func (a *Analyzer) Batch(ctx context.Context) ([]keyword.Record, error) {
	ks, err := a.store.ListKeywords(ctx, store.ListOpts{})
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	return store.Records(ks), nil
}

// HasYoYData resolves mode against a batch.
func (a *Analyzer) HasYoYData(records []keyword.Record, mode YoYMode) bool {
	switch mode {
	case YoYOn:
		return true
	case YoYOff:
		return false
	}
	return keyword.HasYoYData(records, a.historyMonths)
}

// Analyze classifies the stored batch and persists every keyword's category.
func (a *Analyzer) Analyze(ctx context.Context, mode YoYMode) (*Analysis, error) {
	analysis, err := a.Classify(ctx, mode)
	if err != nil {
		return nil, err
	}
	if err := a.store.SetCategories(ctx, analysis.Assignments); err != nil {
		return nil, fmt.Errorf("persist categories: %w", err)
	}
	return analysis, nil
}

// Classify classifies the stored batch without writing anything back.
func (a *Analyzer) Classify(ctx context.Context, mode YoYMode) (*Analysis, error) {
	records, err := a.Batch(ctx)
	if err != nil {
		return nil, err
	}

	hasYoY := a.HasYoYData(records, mode)
	assignments := lifecycle.Classify(records, hasYoY)

	return &Analysis{
		KeywordCount: len(records),
		HasYoYData:   hasYoY,
		Counts:       assignments.Count(),
		Assignments:  assignments,
	}, nil
}

// Rank scores the stored batch. An empty brand uses the configured one; an
// empty slug ranks every strategy.
func (a *Analyzer) Rank(ctx context.Context, brand, slug string) ([]scoring.Result, error) {
	if brand == "" {
		brand = a.brand
	}
	engine := scoring.NewEngine(brand, a.topN)

	var strategy *scoring.Strategy
	if slug != "" {
		s, ok := scoring.Lookup(slug)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, slug)
		}
		strategy = s
	}

	records, err := a.Batch(ctx)
	if err != nil {
		return nil, err
	}

	if strategy != nil {
		return []scoring.Result{engine.RunStrategy(records, strategy)}, nil
	}
	return engine.Run(records), nil
}
