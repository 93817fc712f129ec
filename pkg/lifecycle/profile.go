package lifecycle

import (
	"math"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Profile is everything the cascade looks at for one keyword. Absent
// percentage changes are NaN, so every comparison against them is false.
type Profile struct {
	YoY              float64
	ThreeMonth       float64
	BidHigh          float64
	Volume           float64
	CompetitionValue float64
	Variation        float64
}

// NewProfile derives a profile from a record. Variation is computed from the
// record's monthly series.
func NewProfile(r *keyword.Record) Profile {
	return Profile{
		YoY:              r.YoYChange.Float(),
		ThreeMonth:       r.ThreeMonthChange.Float(),
		BidHigh:          r.CPCHigh,
		Volume:           r.SearchVolume,
		CompetitionValue: r.CompetitionValue(),
		Variation:        CoefficientOfVariation(r.MonthlySearchSeries),
	}
}

// CoefficientOfVariation is the population standard deviation over the mean.
// It is 0 for an empty series or a zero mean.
func CoefficientOfVariation(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, v := range series {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(series))) / mean
}
