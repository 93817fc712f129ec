// Package lifecycle assigns each keyword exactly one lifecycle category from
// its growth, volume, competition and variability profile.
package lifecycle

import (
	"sort"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Categorize runs the priority cascade; the first matching rule wins.
// hasYoY selects between the year-over-year and the three-month rule set.
func Categorize(p Profile, hasYoY bool) Category {
	yoy, tm := p.YoY, p.ThreeMonth

	switch {
	case hasYoY && yoy > 1000, !hasYoY && tm > 100:
		return UltraGrowth
	case hasYoY && yoy >= 100, !hasYoY && tm >= 80:
		return ExtremeGrowth
	case hasYoY && yoy >= 50 && yoy < 100, !hasYoY && tm >= 60 && tm < 80:
		return HighGrowth
	case hasYoY && yoy >= 40 && yoy < 50, !hasYoY && tm >= 40 && tm < 60:
		return RisingStar
	case hasYoY && yoy > 30 && tm > 20:
		return GreatPotential
	}

	if !hasYoY && tm > 30 {
		// Never true without YoY data; kept so both rule sets read alike.
		if hasYoY && tm > yoy+20 {
			return MomentumBuilding
		}
		return HasPotential
	}

	hasGrowth := tm > 15
	if hasYoY {
		hasGrowth = yoy > 20 || tm > 20
	}

	switch {
	case hasYoY && tm > yoy+20 && yoy >= 0:
		return MomentumBuilding
	case hasYoY && yoy >= 15 && yoy < 30, !hasYoY && tm >= 15 && tm <= 30:
		return SteadyGrowth
	case tm > 30:
		return HasPotential
	case p.Volume >= 25000 && p.Volume <= 100000 && hasGrowth:
		return HighImpact
	case p.Volume >= 1000 && p.Volume <= 5000 && p.CompetitionValue < 0.4 && hasGrowth:
		return QuickWin
	case p.Variation < 40 && p.Volume >= 1000:
		return SolidPerformer
	case (hasYoY && yoy > 30 || tm > 30) && p.Volume < 15000:
		return HiddenGem
	case p.BidHigh > 50:
		return HighValue
	case p.Volume >= 100000:
		return HighVolume
	case hasYoY && yoy >= 0 && tm < -5:
		return StartDeclining
	case hasYoY && yoy < 0 && tm < 0:
		return Declining
	case !hasYoY && tm < -10:
		return Declining
	}
	return Standard
}

// Assignment pairs a keyword with its category.
type Assignment struct {
	Keyword  string   `json:"keyword"`
	Category Category `json:"category"`
}

// Assign classifies every valid record of the batch, in batch order.
// Records with no search volume are skipped.
func Assign(records []keyword.Record, hasYoY bool) []Assignment {
	out := make([]Assignment, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.Valid() {
			continue
		}
		out = append(out, Assignment{
			Keyword:  r.Keyword,
			Category: Categorize(NewProfile(r), hasYoY),
		})
	}
	return out
}

// Assignments maps normalized keyword text to its category.
type Assignments map[string]Category

// Classify returns the category of every valid keyword in the batch. When
// the same keyword text appears twice the later row wins.
func Classify(records []keyword.Record, hasYoY bool) Assignments {
	out := make(Assignments, len(records))
	for _, a := range Assign(records, hasYoY) {
		out[keyword.NormalizeText(a.Keyword)] = a.Category
	}
	return out
}

// Lookup returns the keyword's category, or Standard when it was not classified.
func (a Assignments) Lookup(kw string) Category {
	if c, ok := a[keyword.NormalizeText(kw)]; ok {
		return c
	}
	return Standard
}

// Filter lists the keywords in one category, sorted.
func (a Assignments) Filter(c Category) []string {
	var out []string
	for kw, cat := range a {
		if cat == c {
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

// CategoryCount is the number of keywords in one category.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Count tallies assignments per category, in AllCategories order. Every
// category is present, including empty ones.
func (a Assignments) Count() []CategoryCount {
	tally := make(map[Category]int, len(a))
	for _, c := range a {
		tally[c]++
	}
	all := AllCategories()
	out := make([]CategoryCount, len(all))
	for i, c := range all {
		out[i] = CategoryCount{Category: c, Count: tally[c]}
	}
	return out
}
