package scoring

import (
	"strings"
)

// Term is one weighted component of a strategy score.
type Term struct {
	Name   string
	Weight float64
	Value  func(c *Candidate) float64
}

// Strategy is a named scoring and filtering policy.
type Strategy struct {
	Slug  string
	Name  string
	Terms []Term
	// Keep excludes keywords before ranking. Nil keeps the whole batch.
	Keep func(c *Candidate, b *Batch) bool
}

// Score is the weighted sum of the strategy's terms, in declaration order.
func (s *Strategy) Score(c *Candidate) float64 {
	var score float64
	for _, t := range s.Terms {
		score += t.Weight * t.Value(c)
	}
	return score
}

// Allows reports whether the strategy's filter keeps c.
func (s *Strategy) Allows(c *Candidate, b *Batch) bool {
	return s.Keep == nil || s.Keep(c, b)
}

func volume(c *Candidate) float64      { return c.Signals.Volume }
func cpc(c *Candidate) float64         { return c.Signals.CPC }
func inverseCPC(c *Candidate) float64  { return 1 - c.Signals.CPC }
func growth(c *Candidate) float64      { return c.Signals.Growth }
func invComp(c *Candidate) float64     { return c.Signals.InvertedCompetition }
func intentBoost(c *Candidate) float64 { return IntentBoost(c.Record.Keyword) }

func longTail(c *Candidate) float64 {
	if c.words >= 4 {
		return 1
	}
	return 0
}

var (
	HighValue = Strategy{
		Slug: "high-value",
		Name: "High Value",
		Terms: []Term{
			{"volume", 0.45, volume},
			{"cpc", 0.35, cpc},
			{"inverted_competition", 0.20, invComp},
		},
	}

	HighPotential = Strategy{
		Slug: "high-potential",
		Name: "High Potential",
		Terms: []Term{
			{"growth", 0.50, growth},
			{"inverted_competition", 0.30, invComp},
			{"volume", 0.20, volume},
		},
	}

	QuickWin = Strategy{
		Slug: "quick-win",
		Name: "Quick Win",
		Terms: []Term{
			{"inverted_competition", 0.60, invComp},
			{"volume", 0.25, volume},
			{"cpc", 0.15, cpc},
		},
	}

	Defensive = Strategy{
		Slug: "defensive",
		Name: "Defensive",
		Terms: []Term{
			{"volume", 0.50, volume},
			{"cpc", 0.30, cpc},
			{"inverted_competition", 0.20, invComp},
		},
		Keep: func(c *Candidate, _ *Batch) bool { return IsDefensive(&c.Record) },
	}

	BudgetFriendly = Strategy{
		Slug: "budget-friendly",
		Name: "Budget-Friendly",
		Terms: []Term{
			{"volume", 0.50, volume},
			{"inverse_cpc", 0.35, inverseCPC},
			{"inverted_competition", 0.15, invComp},
		},
		Keep: func(c *Candidate, _ *Batch) bool { return c.Signals.AvgCPC > 0 },
	}

	LongTail = Strategy{
		Slug: "long-tail",
		Name: "Long-Tail",
		Terms: []Term{
			{"long_tail", 0.40, longTail},
			{"inverted_competition", 0.30, invComp},
			{"volume", 0.20, volume},
			{"cpc", 0.10, cpc},
		},
		Keep: func(c *Candidate, _ *Batch) bool { return c.words >= 4 },
	}

	BrandProtection = Strategy{
		Slug: "brand-protection",
		Name: "Brand Protection",
		Terms: []Term{
			{"volume", 0.50, volume},
			{"cpc", 0.30, cpc},
			{"inverted_competition", 0.20, invComp},
		},
		Keep: func(c *Candidate, b *Batch) bool {
			return b.brand != "" && strings.Contains(c.lower, b.brand)
		},
	}

	BestROI = Strategy{
		Slug: "best-roi",
		Name: "Best ROI",
		Terms: []Term{
			{"volume", 0.35, volume},
			{"inverse_cpc", 0.35, inverseCPC},
			{"inverted_competition", 0.20, invComp},
			{"intent_boost", 0.10, intentBoost},
		},
		Keep: func(c *Candidate, b *Batch) bool {
			r := &c.Record
			return c.Signals.AvgCPC >= 0.50 &&
				!IsUltraBroad(r, b.ultraBroad) &&
				!HasLowIntent(r.Keyword) &&
				!IsSuspiciouslyBranded(r)
		},
	}

	BestOverall = Strategy{
		Slug: "best-overall",
		Name: "Best Overall",
		Terms: []Term{
			{"high_value", 0.35, func(c *Candidate) float64 { return HighValue.Score(c) }},
			{"quick_win", 0.30, func(c *Candidate) float64 { return QuickWin.Score(c) }},
			{"high_potential", 0.25, func(c *Candidate) float64 { return HighPotential.Score(c) }},
			{"defensive", 0.10, func(c *Candidate) float64 {
				if !IsDefensive(&c.Record) {
					return 0
				}
				return Defensive.Score(c)
			}},
		},
	}
)

// Strategies returns all strategies in output order.
func Strategies() []*Strategy {
	return []*Strategy{
		&HighValue,
		&HighPotential,
		&QuickWin,
		&Defensive,
		&BudgetFriendly,
		&LongTail,
		&BrandProtection,
		&BestROI,
		&BestOverall,
	}
}

// Lookup finds a strategy by slug or display name, case-insensitively.
func Lookup(name string) (*Strategy, bool) {
	for _, s := range Strategies() {
		if strings.EqualFold(s.Slug, name) || strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}
