package station

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/perfect-day/internal/domain"
)

// TimestampLayout is the station export timestamp format ("7/18/2023 14:00").
const TimestampLayout = "1/2/2006 15:04"

// Unbounded marks a missing side in a threshold file.
const Unbounded = "*"

// ParseObservations converts a sheet into a typed table. Timestamps are read
// as naive times at source and converted to target. Cells that are empty or
// not numeric become missing readings.
func ParseObservations(sheet Sheet, source, target *time.Location) (domain.Table, error) {
	tsCol := sheet.Column(domain.TimestampColumn)
	if tsCol < 0 {
		return domain.Table{}, fmt.Errorf("observation file has no %s column", domain.TimestampColumn)
	}
	stationCol := sheet.Column(domain.StationColumn)

	table := domain.Table{
		Times:    make([]time.Time, 0, len(sheet.Rows)),
		Stations: make([]string, 0, len(sheet.Rows)),
		Columns:  make(map[string][]float64),
		Units:    make(map[string]string),
	}

	var varCols []int
	for i, name := range sheet.Names {
		if i == tsCol || i == stationCol || name == "" {
			continue
		}
		if _, dup := table.Columns[name]; dup {
			return domain.Table{}, fmt.Errorf("duplicate column %q", name)
		}
		varCols = append(varCols, i)
		table.Order = append(table.Order, name)
		table.Units[name] = sheet.Units[i]
		table.Columns[name] = make([]float64, 0, len(sheet.Rows))
	}

	for r, row := range sheet.Rows {
		ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(row[tsCol]), source)
		if err != nil {
			return domain.Table{}, fmt.Errorf("row %d: parse timestamp: %w", r+3, err)
		}
		table.Times = append(table.Times, ts.In(target))

		station := ""
		if stationCol >= 0 {
			station = strings.TrimSpace(row[stationCol])
		}
		table.Stations = append(table.Stations, station)

		for _, c := range varCols {
			name := sheet.Names[c]
			table.Columns[name] = append(table.Columns[name], parseReading(row[c]))
		}
	}

	return table, nil
}

func parseReading(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ParseThresholds reads a threshold sheet: the first data row holds the
// minimum and the second the maximum for each column, "*" meaning unbounded.
// Columns without a numeric bound on either side are kept as unconstrained.
func ParseThresholds(sheet Sheet) (domain.Thresholds, error) {
	if len(sheet.Rows) < 2 {
		return nil, errors.New("threshold file needs a minimum row and a maximum row")
	}

	out := make(domain.Thresholds, len(sheet.Names))
	for i, name := range sheet.Names {
		if name == "" || name == domain.TimestampColumn || name == domain.StationColumn {
			continue
		}
		lo, err := parseBound(sheet.Rows[0][i])
		if err != nil {
			return nil, fmt.Errorf("minimum for %s: %w", name, err)
		}
		hi, err := parseBound(sheet.Rows[1][i])
		if err != nil {
			return nil, fmt.Errorf("maximum for %s: %w", name, err)
		}
		if lo != nil && hi != nil && *lo > *hi {
			lo, hi = hi, lo
		}
		out[name] = domain.ThresholdBound{Min: lo, Max: hi, Unit: sheet.Units[i]}
	}
	return out, nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Unbounded {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
