package domain

import (
	"math"
	"time"
)

var nan = math.NaN()

// hourly returns n consecutive hourly timestamps starting at start.
func hourly(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

// newTestTable builds a table whose variable order follows names.
func newTestTable(times []time.Time, names []string, cols map[string][]float64, units map[string]string) Table {
	if units == nil {
		units = make(map[string]string)
	}
	return Table{
		Times:    times,
		Stations: make([]string, len(times)),
		Columns:  cols,
		Units:    units,
		Order:    names,
	}
}

func ptr(v float64) *float64 { return &v }

func allRows(t Table) []int {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return rows
}
