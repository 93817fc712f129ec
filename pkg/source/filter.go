package source

import (
	"strings"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Filter keeps keywords by substring match on their text. Exclusions win
// over inclusions; an empty include list keeps everything not excluded.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a filter. Terms match case-insensitively.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{include: lowerAll(include), exclude: lowerAll(exclude)}
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether the keyword text passes the filter.
func (f *Filter) Match(text string) bool {
	lower := keyword.NormalizeText(text)

	if keyword.ContainsAny(lower, f.exclude) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return keyword.ContainsAny(lower, f.include)
}

// Apply returns the records that pass, preserving order.
func (f *Filter) Apply(records []keyword.Record) []keyword.Record {
	out := make([]keyword.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r.Keyword) {
			out = append(out, r)
		}
	}
	return out
}
