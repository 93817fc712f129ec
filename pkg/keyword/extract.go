package keyword

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Column names used by Google Ads Keyword Planner exports.
const (
	ColKeyword            = "Keyword"
	ColSearchVolume       = "Avg. monthly searches"
	ColThreeMonthChange   = "Three month change"
	ColYoYChange          = "YoY change"
	ColCompetition        = "Competition"
	ColCompetitionIndexed = "Competition (indexed value)"
	ColBidLow             = "Top of page bid (low range)"
	ColBidHigh            = "Top of page bid (high range)"

	// MonthlyColumnPrefix precedes the month in per-month volume columns,
	// e.g. "Searches: Jan 2024".
	MonthlyColumnPrefix = "Searches: "
)

// YoYHistoryMonths is how much history a batch needs before year-over-year
// changes are trusted.
const YoYHistoryMonths = 24

// Row is one loosely typed input row keyed by column name.
// Values are usually strings (CSV) or numbers (JSON).
type Row map[string]any

var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Extract converts a raw row into a Record. Missing or malformed numeric
// fields become 0; missing percent changes stay absent. It never fails.
func Extract(row Row) Record {
	return Record{
		Keyword:             strings.TrimSpace(toString(row[ColKeyword])),
		SearchVolume:        nonNegative(ParseNumber(row[ColSearchVolume])),
		CPCLow:              nonNegative(ParseNumber(row[ColBidLow])),
		CPCHigh:             nonNegative(ParseNumber(row[ColBidHigh])),
		CompetitionIndexed:  parseIndex(row[ColCompetitionIndexed]),
		CompetitionLabel:    ParseCompetitionLevel(toString(row[ColCompetition])),
		YoYChange:           ParsePercent(row, ColYoYChange),
		ThreeMonthChange:    ParsePercent(row, ColThreeMonthChange),
		MonthlySearchSeries: monthlySeries(row),
	}
}

// ExtractAll applies Extract to every row, keeping order.
func ExtractAll(rows []Row) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = Extract(row)
	}
	return out
}

// ParsePercent reads a percentage column. An absent key or nil value is
// absent; a present value that does not parse (e.g. "N/A") is 0.
func ParsePercent(row Row, col string) Percent {
	v, ok := row[col]
	if !ok || v == nil {
		return Percent{}
	}
	return Pct(ParseNumber(v))
}

// parseIndex keeps a blank or missing competition index absent so the label
// can stand in for it.
func parseIndex(v any) Percent {
	if v == nil || strings.TrimSpace(toString(v)) == "" {
		return Percent{}
	}
	return Pct(ParseNumber(v))
}

// ParseNumber converts a loosely typed value into a finite float.
// Strings have "%", "$", thousands separators and surrounding space removed
// and are then read up to the first non-numeric character. Anything that does
// not start with a number yields 0.
func ParseNumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		f, _ = x.Float64()
	case string:
		f = parseNumberString(x)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumberString(s string) float64 {
	s = strings.NewReplacer("%", "", "$", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}
	return ""
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// monthlySeries collects "Searches: Mon YYYY" columns in chronological order.
// Columns whose month does not parse are ignored.
func monthlySeries(row Row) []float64 {
	type point struct {
		month time.Time
		value float64
	}
	var points []point
	for col, v := range row {
		if !strings.HasPrefix(col, MonthlyColumnPrefix) {
			continue
		}
		month, err := time.Parse("Jan 2006", strings.TrimSpace(strings.TrimPrefix(col, MonthlyColumnPrefix)))
		if err != nil {
			continue
		}
		points = append(points, point{month: month, value: nonNegative(ParseNumber(v))})
	}
	if len(points) == 0 {
		return nil
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].month.Before(points[j].month)
	})
	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.value
	}
	return series
}
