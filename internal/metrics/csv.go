// Package metrics parses uploaded CSV exports and aggregates the key
// campaign metrics found in them.
package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row maps a header to its cell value.
type Row map[string]string

// Table is one parsed CSV file.
type Table struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
	Rows     []Row    `json:"rows"`
}

const utf8BOM = "\ufeff"

// ParseCSV reads a header row followed by data rows. Short rows are padded
// with empty cells, extra cells are dropped and blank lines are skipped.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headers[i] = strings.TrimSpace(h)
	}

	table := &Table{Headers: headers, Rows: []Row{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}
		if blank(record) {
			continue
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			if _, dup := row[h]; dup {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseCSVString parses CSV content held in memory.
func ParseCSVString(filename, content string) (*Table, error) {
	t, err := ParseCSV(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	t.Filename = filename
	return t, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
