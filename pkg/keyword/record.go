package keyword

import (
	"database/sql"
	"encoding/json"
	"math"
	"strings"
)

// CompetitionLevel is the bucketed competition label reported by Keyword Planner.
type CompetitionLevel string

const (
	CompetitionUnknown CompetitionLevel = ""
	CompetitionLow     CompetitionLevel = "Low"
	CompetitionMedium  CompetitionLevel = "Medium"
	CompetitionHigh    CompetitionLevel = "High"
)

// ParseCompetitionLevel accepts Low/Medium/High in any case. Anything else is unknown.
func ParseCompetitionLevel(s string) CompetitionLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CompetitionLow
	case "medium":
		return CompetitionMedium
	case "high":
		return CompetitionHigh
	}
	return CompetitionUnknown
}

// Percent is a percentage or 0-100 index that may be absent from the source
// row. An absent value never satisfies a comparison.
type Percent struct {
	sql.NullFloat64
}

// Pct returns a present percentage.
func Pct(v float64) Percent {
	return Percent{sql.NullFloat64{Float64: v, Valid: true}}
}

// Float returns the value, or NaN when absent so every ordered comparison is false.
func (p Percent) Float() float64 {
	if !p.Valid {
		return math.NaN()
	}
	return p.Float64
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Float64)
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Pct(v)
	return nil
}

// Record is one keyword row of a batch.
type Record struct {
	Keyword             string           `json:"keyword"`
	SearchVolume        float64          `json:"search_volume"`
	CPCLow              float64          `json:"cpc_low"`
	CPCHigh             float64          `json:"cpc_high"`
	CompetitionIndexed  Percent          `json:"competition_indexed"`
	CompetitionLabel    CompetitionLevel `json:"competition_label,omitempty"`
	YoYChange           Percent          `json:"yoy_change"`
	ThreeMonthChange    Percent          `json:"three_month_change"`
	MonthlySearchSeries []float64        `json:"monthly_searches,omitempty"`
}

// AvgCPC is the midpoint of the top-of-page bid range.
func (r *Record) AvgCPC() float64 {
	return (r.CPCLow + r.CPCHigh) / 2
}

// GrowthRate is the YoY change when present and nonzero, else the three month
// change when present and nonzero, else 0.
func (r *Record) GrowthRate() float64 {
	if r.YoYChange.Valid && r.YoYChange.Float64 != 0 {
		return r.YoYChange.Float64
	}
	if r.ThreeMonthChange.Valid && r.ThreeMonthChange.Float64 != 0 {
		return r.ThreeMonthChange.Float64
	}
	return 0
}

// WordCount counts whitespace separated tokens.
func (r *Record) WordCount() int {
	return len(strings.Fields(r.Keyword))
}

// CompetitionLevel returns the label, or buckets the indexed value when the
// label is missing (<33 Low, <67 Medium, otherwise High).
func (r *Record) CompetitionLevel() CompetitionLevel {
	if r.CompetitionLabel != CompetitionUnknown {
		return r.CompetitionLabel
	}
	switch idx := r.CompetitionIndex(); {
	case idx < 33:
		return CompetitionLow
	case idx < 67:
		return CompetitionMedium
	default:
		return CompetitionHigh
	}
}

// CompetitionIndex is the indexed competition when the row carried one.
// Otherwise a label stands in at 30, 60 or 90, and a row with neither is 0.
func (r *Record) CompetitionIndex() float64 {
	if r.CompetitionIndexed.Valid {
		return r.CompetitionIndexed.Float64
	}
	switch r.CompetitionLabel {
	case CompetitionLow:
		return 30
	case CompetitionMedium:
		return 60
	case CompetitionHigh:
		return 90
	}
	return 0
}

// CompetitionValue maps the competition level to 0.3 / 0.6 / 0.9.
func (r *Record) CompetitionValue() float64 {
	switch r.CompetitionLevel() {
	case CompetitionHigh:
		return 0.9
	case CompetitionMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Valid reports whether the record takes part in scoring and classification.
func (r *Record) Valid() bool {
	return strings.TrimSpace(r.Keyword) != "" && r.SearchVolume > 0
}

// FilterValid drops records with an empty keyword or no search volume.
// The input slice is not modified.
func FilterValid(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// HasYoYData reports whether any record carries at least months points of history.
func HasYoYData(records []Record, months int) bool {
	for i := range records {
		if len(records[i].MonthlySearchSeries) >= months {
			return true
		}
	}
	return false
}
