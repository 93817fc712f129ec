package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/elonfeng/kwradar/internal/store"
	"github.com/elonfeng/kwradar/pkg/keyword"
	"github.com/elonfeng/kwradar/pkg/lifecycle"
	"github.com/elonfeng/kwradar/pkg/radar"
	"github.com/elonfeng/kwradar/pkg/scoring"
	"github.com/elonfeng/kwradar/pkg/source"
)

func TestYoYMode(t *testing.T) {
	tests := []struct {
		yoy, noYoY bool
		want       radar.YoYMode
	}{
		{false, false, radar.YoYAuto},
		{true, false, radar.YoYOn},
		{false, true, radar.YoYOff},
	}
	for _, tt := range tests {
		if got := yoyMode(tt.yoy, tt.noYoY); got != tt.want {
			t.Errorf("yoyMode(%v, %v) = %v, want %v", tt.yoy, tt.noYoY, got, tt.want)
		}
	}
}

func TestSourceFor(t *testing.T) {
	if _, ok := sourceFor("", "https://example.com/export.csv", nil).(*source.URL); !ok {
		t.Error("https location should build a URL source")
	}
	if _, ok := sourceFor("", "exports/planner.csv", nil).(*source.File); !ok {
		t.Error("path should build a File source")
	}
}

func TestPrintRankings(t *testing.T) {
	records := []keyword.Record{
		{Keyword: "ai agent", SearchVolume: 1000, CPCLow: 1, CPCHigh: 3, ThreeMonthChange: keyword.Pct(150)},
		{Keyword: "crm", SearchVolume: 2000, CPCLow: 4, CPCHigh: 9},
	}
	s, _ := scoring.Lookup("quick-win")
	result := scoring.NewEngine("", 0).RunStrategy(records, s)

	var buf bytes.Buffer
	if err := printRankings(&buf, []scoring.Result{result, {Strategy: "Empty"}}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"== " + result.Strategy + " ==", "KEYWORD", "no keywords"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCounts(t *testing.T) {
	a := &radar.Analysis{
		KeywordCount: 3,
		Counts: []lifecycle.CategoryCount{
			{Category: lifecycle.UltraGrowth, Count: 2},
			{Category: lifecycle.Declining, Count: 0},
			{Category: lifecycle.Standard, Count: 1},
		},
	}

	var buf bytes.Buffer
	if err := printCounts(&buf, a); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "three-month rules") || !strings.Contains(out, string(lifecycle.UltraGrowth)) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, string(lifecycle.Declining)) {
		t.Errorf("empty categories should be hidden:\n%s", out)
	}
}

func TestPrintKeywordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printKeywords(&buf, []store.Keyword{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no keywords") {
		t.Errorf("output = %q", buf.String())
	}
}
