package scoring

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

func rec(kw string, volume float64) keyword.Record {
	return keyword.Record{Keyword: kw, SearchVolume: volume}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{5, 0, 10, 0.5},
		{0, 0, 10, 0},
		{10, 0, 10, 1},
		{7, 7, 7, 0},
		{-5, -10, 10, 0.25},
	}

	for _, tt := range tests {
		if got := Normalize(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("Normalize(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestVolumeOnlyBatch(t *testing.T) {
	var records []keyword.Record
	for _, v := range []float64{100, 1000, 10000} {
		r := rec(fmt.Sprintf("kw %v", v), v)
		r.CPCLow, r.CPCHigh = 1, 1
		r.CompetitionIndexed = keyword.Pct(50)
		r.YoYChange = keyword.Pct(10)
		records = append(records, r)
	}

	b := NewBatch(records, "")
	want := []float64{0, 0.09, 1.0}
	for i, c := range b.Candidates {
		if !almostEqual(c.Signals.Volume, want[i], 0.01) {
			t.Errorf("normalized volume[%d] = %v, want %v", i, c.Signals.Volume, want[i])
		}
		if c.Signals.CPC != 0 || c.Signals.Growth != 0 || c.Signals.InvertedCompetition != 0 {
			t.Errorf("constant signals should normalize to 0, got %+v", c.Signals)
		}
	}
}

func TestSignalsStayInUnitRange(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "a", SearchVolume: 10, CPCLow: 0, CPCHigh: 0, CompetitionIndexed: keyword.Pct(100), YoYChange: keyword.Pct(-50)},
		{Keyword: "b", SearchVolume: 500, CPCLow: 0.5, CPCHigh: 1.5, CompetitionIndexed: keyword.Pct(0), YoYChange: keyword.Pct(300)},
		{Keyword: "c", SearchVolume: 90, CPCLow: 4, CPCHigh: 6, CompetitionIndexed: keyword.Pct(40), ThreeMonthChange: keyword.Pct(20)},
	}

	b := NewBatch(records, "")
	for _, c := range b.Candidates {
		for name, v := range map[string]float64{
			"volume": c.Signals.Volume, "cpc": c.Signals.CPC,
			"growth": c.Signals.Growth, "invComp": c.Signals.InvertedCompetition,
		} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Errorf("%s: %s = %v, outside [0,1]", c.Record.Keyword, name, v)
			}
		}
	}

	// CPC range ignores the zero-CPC keyword: min 1, max 5.
	if b.Bounds.CPC != (Range{Min: 1, Max: 5}) {
		t.Errorf("CPC range = %+v, want {1 5}", b.Bounds.CPC)
	}
	if got := b.Candidates[0].Signals.CPC; got != 0 {
		t.Errorf("zero-CPC keyword normalized CPC = %v, want 0", got)
	}
	if got := b.Candidates[2].Signals.CPC; got != 1 {
		t.Errorf("max-CPC keyword normalized CPC = %v, want 1", got)
	}
}

func TestInvertedCompetitionFromLabels(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "low comp kw", SearchVolume: 1000, CompetitionLabel: keyword.CompetitionLow},
		{Keyword: "medium comp kw", SearchVolume: 1000, CompetitionLabel: keyword.CompetitionMedium},
		{Keyword: "high comp kw", SearchVolume: 1000, CompetitionLabel: keyword.CompetitionHigh},
	}

	b := NewBatch(records, "")
	want := []float64{1, 0.5, 0}
	for i, c := range b.Candidates {
		if got := c.Signals.InvertedCompetition; !almostEqual(got, want[i], 1e-9) {
			t.Errorf("%s: invComp = %v, want %v", c.Record.Keyword, got, want[i])
		}
	}

	// An indexed value wins over the label.
	mixed := []keyword.Record{
		{Keyword: "a", SearchVolume: 1000, CompetitionLabel: keyword.CompetitionHigh, CompetitionIndexed: keyword.Pct(10)},
		{Keyword: "b", SearchVolume: 1000, CompetitionLabel: keyword.CompetitionLow},
	}
	b = NewBatch(mixed, "")
	if b.Candidates[0].Signals.InvertedCompetition != 1 || b.Candidates[1].Signals.InvertedCompetition != 0 {
		t.Errorf("index 10 should beat label Low (30): %+v", b.Bounds.InvertedCompetition)
	}
}

func TestNewBatchDropsZeroVolume(t *testing.T) {
	records := []keyword.Record{rec("kept", 10), rec("gone", 0), rec("", 50), rec("negative", -5)}
	b := NewBatch(records, "")
	if b.Len() != 1 || b.Candidates[0].Record.Keyword != "kept" {
		t.Errorf("unexpected candidates: %+v", b.Candidates)
	}
}

func TestStrategyWeightsSumToOne(t *testing.T) {
	for _, s := range Strategies() {
		var sum, nonDefensive float64
		for _, term := range s.Terms {
			sum += term.Weight
			if term.Name != "defensive" {
				nonDefensive += term.Weight
			}
		}
		if !almostEqual(sum, 1.0, 1e-9) {
			t.Errorf("%s weights sum to %v, want 1.0", s.Name, sum)
		}
		if s.Slug == BestOverall.Slug && !almostEqual(nonDefensive, 0.90, 1e-9) {
			t.Errorf("Best Overall non-defensive weights sum to %v, want 0.90", nonDefensive)
		}
	}
}

func TestStrategyFormulas(t *testing.T) {
	c := &Candidate{
		Record:  keyword.Record{Keyword: "buy running shoes online", SearchVolume: 60000, CompetitionIndexed: keyword.Pct(80)},
		Signals: Signals{Volume: 0.8, CPC: 0.4, Growth: 0.6, InvertedCompetition: 0.2},
		words:   4,
	}

	tests := []struct {
		s    *Strategy
		want float64
	}{
		{&HighValue, 0.45*0.8 + 0.35*0.4 + 0.20*0.2},
		{&HighPotential, 0.50*0.6 + 0.30*0.2 + 0.20*0.8},
		{&QuickWin, 0.60*0.2 + 0.25*0.8 + 0.15*0.4},
		{&Defensive, 0.50*0.8 + 0.30*0.4 + 0.20*0.2},
		{&BudgetFriendly, 0.50*0.8 + 0.35*(1-0.4) + 0.15*0.2},
		{&LongTail, 0.40*1 + 0.30*0.2 + 0.20*0.8 + 0.10*0.4},
		{&BrandProtection, 0.50*0.8 + 0.30*0.4 + 0.20*0.2},
		{&BestROI, 0.35*0.8 + 0.35*(1-0.4) + 0.20*0.2 + 0.10*0.5},
	}
	for _, tt := range tests {
		if got := tt.s.Score(c); !almostEqual(got, tt.want, 1e-12) {
			t.Errorf("%s.Score() = %v, want %v", tt.s.Name, got, tt.want)
		}
	}

	// Defensive keyword: the defensive component applies.
	wantOverall := 0.35*HighValue.Score(c) + 0.30*QuickWin.Score(c) + 0.25*HighPotential.Score(c) + 0.10*Defensive.Score(c)
	if got := BestOverall.Score(c); !almostEqual(got, wantOverall, 1e-12) {
		t.Errorf("BestOverall.Score(defensive) = %v, want %v", got, wantOverall)
	}

	// Below 50,000 searches it does not.
	c.Record.SearchVolume = 40000
	wantOverall = 0.35*HighValue.Score(c) + 0.30*QuickWin.Score(c) + 0.25*HighPotential.Score(c)
	if got := BestOverall.Score(c); !almostEqual(got, wantOverall, 1e-12) {
		t.Errorf("BestOverall.Score(non-defensive) = %v, want %v", got, wantOverall)
	}
}

func TestIsDefensive(t *testing.T) {
	tests := []struct {
		name string
		rec  keyword.Record
		want bool
	}{
		{"high index", keyword.Record{SearchVolume: 60000, CompetitionIndexed: keyword.Pct(67)}, true},
		{"high label", keyword.Record{SearchVolume: 60000, CompetitionLabel: keyword.CompetitionHigh}, true},
		{"low volume", keyword.Record{SearchVolume: 50000, CompetitionIndexed: keyword.Pct(90)}, false},
		{"medium", keyword.Record{SearchVolume: 90000, CompetitionIndexed: keyword.Pct(50), CompetitionLabel: keyword.CompetitionMedium}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDefensive(&tt.rec); got != tt.want {
				t.Errorf("IsDefensive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntentBoost(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"buy shoes", 0.5},
		{"SHOP for boots", 0.5},
		{"sign up for yoga", 0.5},
		{"best shoes price", 0.3},
		{"nike vs adidas", 0.3},
		{"shoes", 0},
	}

	for _, tt := range tests {
		if got := IntentBoost(tt.text); got != tt.want {
			t.Errorf("IntentBoost(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBestROIPredicates(t *testing.T) {
	threshold := float64(UltraBroadFloor)

	broad := []struct {
		rec  keyword.Record
		want bool
	}{
		{rec("shoes", 1000), true},
		{rec("cheap shoes", 1000), false},
		{rec("red running shoes", 1000), false},
		{rec("buy red running shoes", 6_000_000), true},
	}
	for _, tt := range broad {
		if got := IsUltraBroad(&tt.rec, threshold); got != tt.want {
			t.Errorf("IsUltraBroad(%q) = %v, want %v", tt.rec.Keyword, got, tt.want)
		}
	}

	lowIntent := []struct {
		text string
		want bool
	}{
		{"running shoes", true},
		{"running shoes near me", false},
		{"running shoes review", false},
		{"running shoes discount code", false},
	}
	for _, tt := range lowIntent {
		if got := HasLowIntent(tt.text); got != tt.want {
			t.Errorf("HasLowIntent(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	branded := []struct {
		rec  keyword.Record
		want bool
	}{
		{keyword.Record{Keyword: "Nike shoes", SearchVolume: 5000, CPCLow: 2, CPCHigh: 2, CompetitionIndexed: keyword.Pct(20)}, true},
		{keyword.Record{Keyword: "shoes deal", SearchVolume: 200000, CPCLow: 0.5, CPCHigh: 0.5, CompetitionIndexed: keyword.Pct(10)}, true},
		{keyword.Record{Keyword: "shoes deal", SearchVolume: 200000, CPCLow: 2, CPCHigh: 2, CompetitionIndexed: keyword.Pct(10)}, false},
		{keyword.Record{Keyword: "NIKE shoes", SearchVolume: 5000}, false},
	}
	for _, tt := range branded {
		if got := IsSuspiciouslyBranded(&tt.rec); got != tt.want {
			t.Errorf("IsSuspiciouslyBranded(%+v) = %v, want %v", tt.rec, got, tt.want)
		}
	}
}

func resultFor(t *testing.T, results []Result, s *Strategy) Result {
	t.Helper()
	for _, r := range results {
		if r.Slug == s.Slug {
			return r
		}
	}
	t.Fatalf("no result for %s", s.Slug)
	return Result{}
}

func contains(list []ScoredKeyword, kw string) bool {
	for _, sk := range list {
		if sk.Keyword == kw {
			return true
		}
	}
	return false
}

func TestBestROIExcludesSuspiciouslyBranded(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "Nike shoes", SearchVolume: 5000, CPCLow: 2, CPCHigh: 2, CompetitionIndexed: keyword.Pct(20)},
		{Keyword: "buy Nike running shoes", SearchVolume: 5000, CPCLow: 2, CPCHigh: 2, CompetitionIndexed: keyword.Pct(20)},
		{Keyword: "buy nike running shoes", SearchVolume: 5000, CPCLow: 2, CPCHigh: 2, CompetitionIndexed: keyword.Pct(20)},
		{Keyword: "buy trail running shoes", SearchVolume: 800, CPCLow: 0.6, CPCHigh: 0.8, CompetitionIndexed: keyword.Pct(70)},
	}

	roi := resultFor(t, ScoreAndRank(records, ""), &BestROI)
	for _, kw := range []string{"Nike shoes", "buy Nike running shoes"} {
		if contains(roi.Results, kw) {
			t.Errorf("%q should be excluded from Best ROI", kw)
		}
	}
	// Same text in lower case passes every other Best ROI filter.
	for _, kw := range []string{"buy nike running shoes", "buy trail running shoes"} {
		if !contains(roi.Results, kw) {
			t.Errorf("%q should be in Best ROI", kw)
		}
	}
}

func TestBestROIRequiresMinimumCPC(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "buy cheap trail shoes", SearchVolume: 800, CPCLow: 0.2, CPCHigh: 0.6},
	}
	roi := resultFor(t, ScoreAndRank(records, ""), &BestROI)
	if len(roi.Results) != 0 {
		t.Errorf("avg CPC 0.40 should be excluded, got %+v", roi.Results)
	}
}

func TestLongTailExcludesShortKeywords(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "cheap running shoes", SearchVolume: 1_000_000, CPCLow: 9, CPCHigh: 9, CompetitionIndexed: keyword.Pct(0), YoYChange: keyword.Pct(500)},
		{Keyword: "cheap trail running shoes", SearchVolume: 10, CPCLow: 0.1, CPCHigh: 0.1, CompetitionIndexed: keyword.Pct(100)},
	}

	lt := resultFor(t, ScoreAndRank(records, ""), &LongTail)
	if contains(lt.Results, "cheap running shoes") {
		t.Error("3-word keyword must not appear in Long-Tail")
	}
	if len(lt.Results) != 1 {
		t.Errorf("Long-Tail results = %d, want 1", len(lt.Results))
	}
}

func TestFilteredStrategies(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "acme running shoes", SearchVolume: 90000, CompetitionIndexed: keyword.Pct(80), CPCLow: 1, CPCHigh: 2},
		{Keyword: "free shoes", SearchVolume: 500},
		{Keyword: "shoes for flat feet women", SearchVolume: 300, CPCLow: 0.5, CPCHigh: 0.5},
	}
	results := ScoreAndRank(records, "ACME")

	def := resultFor(t, results, &Defensive)
	if len(def.Results) != 1 || def.Results[0].Keyword != "acme running shoes" {
		t.Errorf("Defensive = %+v", def.Results)
	}

	budget := resultFor(t, results, &BudgetFriendly)
	if contains(budget.Results, "free shoes") || len(budget.Results) != 2 {
		t.Errorf("Budget-Friendly = %+v", budget.Results)
	}

	brand := resultFor(t, results, &BrandProtection)
	if len(brand.Results) != 1 || brand.Results[0].Keyword != "acme running shoes" {
		t.Errorf("Brand Protection = %+v", brand.Results)
	}

	for _, s := range []*Strategy{&HighValue, &HighPotential, &QuickWin, &BestOverall} {
		if got := len(resultFor(t, results, s).Results); got != 3 {
			t.Errorf("%s results = %d, want 3", s.Name, got)
		}
	}

	noBrand := resultFor(t, ScoreAndRank(records, "  "), &BrandProtection)
	if len(noBrand.Results) != 0 {
		t.Errorf("empty brand should give no results, got %+v", noBrand.Results)
	}
}

func TestRankN(t *testing.T) {
	var scored []ScoredKeyword
	for i := 0; i < 15; i++ {
		scored = append(scored, ScoredKeyword{
			Record: keyword.Record{Keyword: fmt.Sprintf("kw%02d", i)},
			Score:  float64(i % 3),
		})
	}

	top := Rank(scored)
	if len(top) != TopN {
		t.Fatalf("len = %d, want %d", len(top), TopN)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Errorf("not descending at %d: %v > %v", i, top[i].Score, top[i-1].Score)
		}
	}

	// Ties keep batch order: score 2 holders are kw02, kw05, kw08, kw11, kw14.
	want := []string{"kw02", "kw05", "kw08", "kw11", "kw14", "kw01", "kw04", "kw07", "kw10", "kw13"}
	for i, w := range want {
		if top[i].Keyword != w {
			t.Errorf("top[%d] = %s, want %s", i, top[i].Keyword, w)
		}
	}

	if scored[0].Keyword != "kw00" {
		t.Error("RankN must not reorder its input")
	}
}

func TestScoreAndRankEmptyBatch(t *testing.T) {
	results := ScoreAndRank(nil, "acme")
	if len(results) != len(Strategies()) {
		t.Fatalf("got %d results, want %d", len(results), len(Strategies()))
	}
	for _, r := range results {
		if r.Results == nil || len(r.Results) != 0 {
			t.Errorf("%s: want empty non-nil results, got %#v", r.Strategy, r.Results)
		}
	}
}

func TestScoreAndRankDeterministic(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "buy shoes online", SearchVolume: 4000, CPCLow: 1, CPCHigh: 3, CompetitionIndexed: keyword.Pct(40), YoYChange: keyword.Pct(20)},
		{Keyword: "shoe repair near me", SearchVolume: 900, CPCLow: 2, CPCHigh: 4, CompetitionIndexed: keyword.Pct(10), ThreeMonthChange: keyword.Pct(50)},
		{Keyword: "best running shoes for flat feet", SearchVolume: 1200, CPCLow: 0.5, CPCHigh: 1.5, CompetitionIndexed: keyword.Pct(90)},
	}
	before := make([]keyword.Record, len(records))
	copy(before, records)

	first := ScoreAndRank(records, "")
	second := ScoreAndRank(records, "")

	if !reflect.DeepEqual(first, second) {
		t.Error("ScoreAndRank is not deterministic")
	}
	if !reflect.DeepEqual(before, records) {
		t.Error("ScoreAndRank mutated its input")
	}

	names := make([]string, len(first))
	for i, r := range first {
		names[i] = r.Strategy
	}
	wantNames := []string{"High Value", "High Potential", "Quick Win", "Defensive", "Budget-Friendly", "Long-Tail", "Brand Protection", "Best ROI", "Best Overall"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("strategy order = %v, want %v", names, wantNames)
	}
}

func TestEngineTopN(t *testing.T) {
	var records []keyword.Record
	for i := 1; i <= 30; i++ {
		records = append(records, rec(fmt.Sprintf("keyword %d", i), float64(i*100)))
	}

	hv := NewEngine("", 0).RunStrategy(records, &HighValue)
	if len(hv.Results) != TopN {
		t.Errorf("default topN = %d, want %d", len(hv.Results), TopN)
	}
	if hv.Results[0].Keyword != "keyword 30" {
		t.Errorf("top keyword = %s, want keyword 30", hv.Results[0].Keyword)
	}

	five := NewEngine("", 5).RunStrategy(records, &HighValue)
	if len(five.Results) != 5 {
		t.Errorf("topN 5 = %d", len(five.Results))
	}
}

func TestLookup(t *testing.T) {
	if s, ok := Lookup("best-roi"); !ok || s.Name != "Best ROI" {
		t.Errorf("Lookup(best-roi) = %v, %v", s, ok)
	}
	if s, ok := Lookup("quick win"); !ok || s.Slug != "quick-win" {
		t.Errorf("Lookup(quick win) = %v, %v", s, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
}

func TestPercentile(t *testing.T) {
	var volumes []float64
	for i := 1; i <= 200; i++ {
		volumes = append(volumes, float64(i))
	}
	if got := percentile(volumes, 0.99); got != 199 {
		t.Errorf("percentile = %v, want 199", got)
	}
	if got := percentile([]float64{5}, 0.99); got != 5 {
		t.Errorf("percentile single = %v, want 5", got)
	}
	if got := percentile(nil, 0.99); got != 0 {
		t.Errorf("percentile empty = %v, want 0", got)
	}
}
