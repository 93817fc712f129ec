package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const export = "Keyword\tAvg. monthly searches\tThree month change\tYoY change\tCompetition\n" +
	"crm software\t5000\t10%\t150%\tHigh\n" +
	"free crm\t800\t-5%\t20%\tLow\n" +
	"zero volume\t0\t0%\t0%\tLow\n"

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(export), nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Parse() returned %d records, want 2", len(records))
	}
	if records[0].Keyword != "crm software" || records[0].YoYChange.Float() != 150 {
		t.Errorf("first record = %+v", records[0])
	}
}

func TestParseWithFilter(t *testing.T) {
	records, err := Parse(strings.NewReader(export), NewFilter(nil, []string{"FREE"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Keyword != "crm software" {
		t.Errorf("Parse() with exclude = %v", records)
	}
}

func TestParseNoHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("just,some,data\n"), nil); err == nil {
		t.Error("expected error for export without a Keyword header")
	}
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name             string
		include, exclude []string
		text             string
		want             bool
	}{
		{"empty filter keeps all", nil, nil, "anything", true},
		{"include hit", []string{"crm"}, nil, "Best CRM", true},
		{"include miss", []string{"crm"}, nil, "erp tools", false},
		{"exclude wins", []string{"crm"}, []string{"free"}, "free crm", false},
		{"blank terms ignored", []string{" "}, nil, "erp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewFilter(tt.include, tt.exclude).Match(tt.text); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.csv")
	if err := os.WriteFile(path, []byte(export), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFile("", path, nil)
	if src.Name() != path {
		t.Errorf("Name() = %q, want path", src.Name())
	}
	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Load() returned %d records, want 2", len(records))
	}

	if _, err := NewFile("missing", filepath.Join(t.TempDir(), "nope.csv"), nil).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(export))
	}))
	defer srv.Close()

	records, err := NewURL("planner", srv.URL+"/export.csv", nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Load() returned %d records, want 2", len(records))
	}

	if _, err := NewURL("planner", srv.URL+"/missing", nil).Load(context.Background()); err == nil {
		t.Error("expected error for 404")
	}
}
