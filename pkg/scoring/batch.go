package scoring

import (
	"math"
	"strings"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// UltraBroadFloor is the volume above which a keyword is always ultra broad.
const UltraBroadFloor = 5_000_000

// Candidate is one keyword of a batch with its derived signals.
type Candidate struct {
	Record  keyword.Record
	Signals Signals

	lower string
	words int
}

// Batch is a scoring call's precomputed view of the input. It is built once
// and shared read-only by every strategy.
type Batch struct {
	Candidates []Candidate
	Bounds     Bounds

	brand      string
	ultraBroad float64
}

// NewBatch drops invalid records, computes the batch bounds once and derives
// every keyword's signals. The input slice is not modified.
func NewBatch(records []keyword.Record, brand string) *Batch {
	valid := keyword.FilterValid(records)
	bounds := ComputeBounds(valid)

	b := &Batch{
		Candidates: make([]Candidate, len(valid)),
		Bounds:     bounds,
		brand:      strings.ToLower(strings.TrimSpace(brand)),
		ultraBroad: math.Max(UltraBroadFloor, bounds.VolumeP99),
	}
	for i := range valid {
		b.Candidates[i] = Candidate{
			Record:  valid[i],
			Signals: bounds.Signals(&valid[i]),
			lower:   strings.ToLower(valid[i].Keyword),
			words:   valid[i].WordCount(),
		}
	}
	return b
}

// Len is the number of keywords that survived ingestion.
func (b *Batch) Len() int { return len(b.Candidates) }

// UltraBroadVolume is max(5,000,000, 99th percentile volume of the batch).
func (b *Batch) UltraBroadVolume() float64 { return b.ultraBroad }

// IsDefensive: high competition and more than 50,000 monthly searches.
func IsDefensive(r *keyword.Record) bool {
	highComp := r.CompetitionIndex() >= 67 || r.CompetitionLabel == keyword.CompetitionHigh
	return highComp && r.SearchVolume > 50000
}
