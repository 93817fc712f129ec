package keyword

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoHeader is returned when no line of the input names a Keyword column.
var ErrNoHeader = errors.New("no header row with a Keyword column")

// ReadCSV parses a Keyword Planner export. The input may be UTF-8 or UTF-16
// with a BOM, tab or comma separated, and may start with title lines before
// the header row. Every data row becomes a Row of column name to raw string.
func ReadCSV(r io.Reader) ([]Row, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	var (
		header []string
		delim  rune
	)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if h, d, ok := parseHeader(line); ok {
				header, delim = h, d
				break
			}
		}
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		if err != nil {
			return nil, fmt.Errorf("read csv preamble: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []Row
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if blank(fields) {
			continue
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseHeader reports whether line is the header row and which delimiter it uses.
func parseHeader(line string) ([]string, rune, bool) {
	line = strings.TrimRight(line, "\r\n")
	delim := ','
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		delim = '\t'
	}
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = delim
	cr.LazyQuotes = true
	fields, err := cr.Read()
	if err != nil {
		return nil, 0, false
	}
	found := false
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
		if fields[i] == ColKeyword {
			found = true
		}
	}
	return fields, delim, found
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
