// Package station reads weather station exports: observation files and
// threshold files that share a two-row (name, unit) header.
package station

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sheet is a raw two-tier-header table: variable names, their units, then
// data rows as strings.
type Sheet struct {
	Names []string
	Units []string
	Rows  [][]string
}

// Column returns the index of name, or -1.
func (s Sheet) Column(name string) int {
	for i, n := range s.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// SheetLoader reads a station file into a Sheet.
type SheetLoader interface {
	LoadSheet(ctx context.Context, path string) (Sheet, error)
}

// CSVLoader reads sheets with encoding/csv.
type CSVLoader struct{}

// LoadSheet opens path and parses it with [ReadSheet].
func (CSVLoader) LoadSheet(_ context.Context, path string) (Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet, err := ReadSheet(f)
	if err != nil {
		return Sheet{}, fmt.Errorf("read %s: %w", path, err)
	}
	return sheet, nil
}

// ReadSheet parses CSV with a name row and a unit row.
func ReadSheet(r io.Reader) (Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return Sheet{}, err
	}
	return NewSheet(records)
}

// NewSheet splits raw records into header rows and data rows, normalizing
// column names and padding short rows.
func NewSheet(records [][]string) (Sheet, error) {
	if len(records) < 2 {
		return Sheet{}, errors.New("missing name and unit header rows")
	}

	names := make([]string, len(records[0]))
	for i, n := range records[0] {
		names[i] = NormalizeName(n)
	}
	units := make([]string, len(names))
	for i := range units {
		if i < len(records[1]) {
			units[i] = strings.TrimSpace(records[1][i])
		}
	}

	rows := make([][]string, 0, len(records)-2)
	for _, rec := range records[2:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(names))
		copy(row, rec)
		rows = append(rows, row)
	}

	return Sheet{Names: names, Units: units, Rows: rows}, nil
}

// NormalizeName trims a header cell and replaces spaces with underscores,
// so "Air Temp" becomes "Air_Temp".
func NormalizeName(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
