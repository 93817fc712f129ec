package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/elonfeng/kwradar/pkg/keyword"
)

// Source yields a keyword batch from a Keyword Planner export.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]keyword.Record, error)
}

// Parse reads a Keyword Planner export, extracts the records and applies the
// filter. A nil filter keeps every valid record.
func Parse(r io.Reader, filter *Filter) ([]keyword.Record, error) {
	rows, err := keyword.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	records := keyword.FilterValid(keyword.ExtractAll(rows))
	if filter != nil {
		records = filter.Apply(records)
	}
	return records, nil
}

// File loads an export from local disk.
type File struct {
	name   string
	path   string
	filter *Filter
}

// NewFile creates a file source. An empty name defaults to the path.
func NewFile(name, path string, filter *Filter) *File {
	if name == "" {
		name = path
	}
	return &File{name: name, path: path, filter: filter}
}

func (f *File) Name() string { return f.name }

func (f *File) Load(ctx context.Context) ([]keyword.Record, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	records, err := Parse(fh, f.filter)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return records, nil
}

// URL fetches an export over HTTP, for example a published spreadsheet.
type URL struct {
	client *http.Client
	name   string
	url    string
	filter *Filter
}

// NewURL creates an HTTP source. An empty name defaults to the URL.
func NewURL(name, url string, filter *Filter) *URL {
	if name == "" {
		name = url
	}
	return &URL{
		client: &http.Client{Timeout: 30 * time.Second},
		name:   name,
		url:    url,
		filter: filter,
	}
}

func (u *URL) Name() string { return u.name }

func (u *URL) Load(ctx context.Context) ([]keyword.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", u.name, err)
	}
	req.Header.Set("User-Agent", "kwradar/1.0")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u.name, resp.StatusCode)
	}

	records, err := Parse(resp.Body, u.filter)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u.name, err)
	}
	return records, nil
}
