package domain

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultSolarThreshold is the mean solar radiation (W/m^2) an hour needs to
// count as daytime.
const DefaultSolarThreshold = 50.0

// HourSet is a set of hours of the day (0-23).
type HourSet map[int]struct{}

// Has reports whether hour is in the set.
func (h HourSet) Has(hour int) bool {
	_, ok := h[hour]
	return ok
}

// Hours returns the hours in ascending order.
func (h HourSet) Hours() []int {
	out := make([]int, 0, len(h))
	for hour := range h {
		out = append(out, hour)
	}
	sort.Ints(out)
	return out
}

// DaytimeWindow maps an ISO week number to the hours classified as daytime
// in that week. Weeks without any solar reading are absent; weeks whose
// hours all fall below the threshold map to an empty set.
type DaytimeWindow map[int]HourSet

// Contains reports whether t falls inside the window.
func (w DaytimeWindow) Contains(t time.Time) bool {
	_, week := t.ISOWeek()
	hours, ok := w[week]
	if !ok {
		return false
	}
	return hours.Has(t.Hour())
}

// Weeks returns the week keys in ascending order.
func (w DaytimeWindow) Weeks() []int {
	out := make([]int, 0, len(w))
	for week := range w {
		out = append(out, week)
	}
	sort.Ints(out)
	return out
}

type weekHour struct {
	week int
	hour int
}

// DetectDaytime groups the solar variable by (ISO week, hour), averages each
// group ignoring missing readings, and keeps the hours whose mean meets the
// threshold. A table without the solar variable yields an empty window.
func DetectDaytime(table Table, solarVariable string, threshold float64) DaytimeWindow {
	window := DaytimeWindow{}
	solar, ok := table.Columns[solarVariable]
	if !ok {
		return window
	}

	groups := make(map[weekHour][]float64)
	for i, ts := range table.Times {
		v := solar[i]
		if Missing(v) {
			continue
		}
		_, week := ts.ISOWeek()
		key := weekHour{week: week, hour: ts.Hour()}
		groups[key] = append(groups[key], v)
	}

	for key, values := range groups {
		hours, ok := window[key.week]
		if !ok {
			hours = HourSet{}
			window[key.week] = hours
		}
		if stat.Mean(values, nil) >= threshold {
			hours[key.hour] = struct{}{}
		}
	}

	return window
}

// DaytimeRows returns the indexes of the rows whose timestamp falls inside
// the window, in table order.
func DaytimeRows(table Table, window DaytimeWindow) []int {
	var rows []int
	for i, ts := range table.Times {
		if window.Contains(ts) {
			rows = append(rows, i)
		}
	}
	return rows
}
