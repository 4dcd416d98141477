package domain

import (
	"math"
	"time"
)

// Structural columns present in every station export.
const (
	TimestampColumn = "Date_and_Time"
	StationColumn   = "Station"
)

// Table is an in-memory hourly observation table. Variable columns are
// parallel to Times; a NaN entry is a missing reading.
type Table struct {
	Times    []time.Time
	Stations []string
	Columns  map[string][]float64
	Units    map[string]string
	// Order lists the variable columns in file order.
	Order []string
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Times) }

// Has reports whether name is a variable column of the table.
func (t Table) Has(name string) bool {
	_, ok := t.Columns[name]
	return ok
}

// Variables returns the variable names in file order.
func (t Table) Variables() []string {
	out := make([]string, len(t.Order))
	copy(out, t.Order)
	return out
}

// Station returns the first non-empty station identifier, if any.
func (t Table) Station() string {
	for _, s := range t.Stations {
		if s != "" {
			return s
		}
	}
	return ""
}

// Clone returns a deep copy so callers can derive a new table without
// touching the original columns.
func (t Table) Clone() Table {
	out := Table{
		Times:    make([]time.Time, len(t.Times)),
		Stations: make([]string, len(t.Stations)),
		Columns:  make(map[string][]float64, len(t.Columns)),
		Units:    make(map[string]string, len(t.Units)),
		Order:    t.Variables(),
	}
	copy(out.Times, t.Times)
	copy(out.Stations, t.Stations)
	for name, col := range t.Columns {
		c := make([]float64, len(col))
		copy(c, col)
		out.Columns[name] = c
	}
	for name, unit := range t.Units {
		out.Units[name] = unit
	}
	return out
}

// Missing reports whether v represents a missing reading.
func Missing(v float64) bool { return math.IsNaN(v) }
