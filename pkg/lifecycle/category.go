package lifecycle

// Category is a keyword's lifecycle label. Every keyword gets exactly one.
type Category string

const (
	UltraGrowth      Category = "Ultra Growth"
	ExtremeGrowth    Category = "Extreme Growth"
	HighGrowth       Category = "High Growth"
	RisingStar       Category = "Rising Star"
	GreatPotential   Category = "Great Potential"
	MomentumBuilding Category = "Momentum Building"
	HasPotential     Category = "Has Potential"
	SteadyGrowth     Category = "Steady Growth"
	HighImpact       Category = "High Impact"
	QuickWin         Category = "Quick Win"
	SolidPerformer   Category = "Solid Performer"
	HiddenGem        Category = "Hidden Gem"
	HighValue        Category = "High Value"
	HighVolume       Category = "High Volume"
	StartDeclining   Category = "Start Declining"
	Declining        Category = "Declining"
	Standard         Category = "Standard"
)

// AllCategories returns every category in cascade order.
func AllCategories() []Category {
	return []Category{
		UltraGrowth, ExtremeGrowth, HighGrowth, RisingStar, GreatPotential,
		MomentumBuilding, HasPotential, SteadyGrowth, HighImpact, QuickWin,
		SolidPerformer, HiddenGem, HighValue, HighVolume, StartDeclining,
		Declining, Standard,
	}
}

// ParseCategory matches a label exactly as AllCategories spells it.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

var descriptions = map[Category]string{
	UltraGrowth:      "demand exploded, more than ten-fold",
	ExtremeGrowth:    "demand at least doubled",
	HighGrowth:       "strong sustained growth",
	RisingStar:       "solid growth worth watching",
	GreatPotential:   "growing year over year and accelerating recently",
	MomentumBuilding: "recent growth outpacing the yearly trend",
	HasPotential:     "recent growth without long history",
	SteadyGrowth:     "moderate, consistent growth",
	HighImpact:       "mid-sized volume that is growing",
	QuickWin:         "small, uncontested and growing",
	SolidPerformer:   "stable volume month to month",
	HiddenGem:        "low volume with strong growth",
	HighValue:        "expensive clicks, high commercial value",
	HighVolume:       "very large audience",
	StartDeclining:   "yearly trend holds but recent months dropped",
	Declining:        "losing demand",
	Standard:         "no distinctive pattern",
}

// Description is a one-line explanation of the category.
func (c Category) Description() string {
	return descriptions[c]
}
