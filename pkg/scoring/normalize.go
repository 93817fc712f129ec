package scoring

import (
	"math"
	"sort"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Range is the min and max of one raw signal across a batch.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Normalize rescales value to [0,1] with min-max scaling. It returns 0 when
// min equals max.
func Normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

// Normalize rescales value against the range and clamps it to [0,1].
func (r Range) Normalize(value float64) float64 {
	return clamp01(Normalize(value, r.Min, r.Max))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Bounds are the batch-level aggregates every strategy shares.
type Bounds struct {
	Volume              Range   `json:"volume"`
	CPC                 Range   `json:"cpc"`
	Growth              Range   `json:"growth"`
	InvertedCompetition Range   `json:"inverted_competition"`
	VolumeP99           float64 `json:"volume_p99"`
}

// ComputeBounds scans the batch once. The CPC range only covers keywords
// with a positive average CPC.
func ComputeBounds(records []keyword.Record) Bounds {
	var b Bounds
	if len(records) == 0 {
		return b
	}

	volumes := make([]float64, len(records))
	b.Volume = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	b.Growth = b.Volume
	b.InvertedCompetition = b.Volume
	cpc := b.Volume
	hasCPC := false

	for i := range records {
		r := &records[i]
		volumes[i] = r.SearchVolume
		b.Volume = widen(b.Volume, r.SearchVolume)
		b.Growth = widen(b.Growth, r.GrowthRate())
		b.InvertedCompetition = widen(b.InvertedCompetition, invertedCompetition(r))
		if avg := r.AvgCPC(); avg > 0 {
			cpc = widen(cpc, avg)
			hasCPC = true
		}
	}
	if hasCPC {
		b.CPC = cpc
	}

	sort.Float64s(volumes)
	b.VolumeP99 = percentile(volumes, 0.99)
	return b
}

func widen(r Range, v float64) Range {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}

// percentile picks sorted[floor(p*n)], clamped to the last element.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(p * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func invertedCompetition(r *keyword.Record) float64 {
	return 100 - r.CompetitionIndex()
}

// Signals are the per-keyword values strategies score from.
type Signals struct {
	Volume              float64 `json:"normalized_volume"`
	CPC                 float64 `json:"normalized_cpc"`
	Growth              float64 `json:"normalized_growth"`
	InvertedCompetition float64 `json:"normalized_inverted_competition"`
	AvgCPC              float64 `json:"avg_cpc"`
	GrowthRate          float64 `json:"growth_rate"`
}

// Signals derives the normalized view of r against the batch bounds.
func (b Bounds) Signals(r *keyword.Record) Signals {
	return Signals{
		Volume:              b.Volume.Normalize(r.SearchVolume),
		CPC:                 b.CPC.Normalize(r.AvgCPC()),
		Growth:              b.Growth.Normalize(r.GrowthRate()),
		InvertedCompetition: b.InvertedCompetition.Normalize(invertedCompetition(r)),
		AvgCPC:              r.AvgCPC(),
		GrowthRate:          r.GrowthRate(),
	}
}
