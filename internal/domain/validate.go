package domain

import "math"

// ThresholdBound is the accepted range for one variable. A nil bound is
// unbounded on that side.
type ThresholdBound struct {
	Min  *float64
	Max  *float64
	Unit string
}

// Allows reports whether v lies inside the bound. Missing readings are
// always allowed; they are already missing.
func (b ThresholdBound) Allows(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// Unconstrained reports whether neither side is bounded.
func (b ThresholdBound) Unconstrained() bool {
	return b.Min == nil && b.Max == nil
}

// Thresholds maps variable names to their accepted ranges.
type Thresholds map[string]ThresholdBound

// ValidationResult is the outcome of [ApplyThresholds].
type ValidationResult struct {
	Table    Table
	Warnings []UnitMismatchWarning
	// Dropped counts readings turned missing, per variable.
	Dropped map[string]int
}

// ApplyThresholds returns a copy of table with every reading outside its
// variable's threshold replaced by NaN. Variables whose units disagree with
// the threshold table are left untouched and reported as warnings.
// Validation never fails, and applying it twice gives the same table.
func ApplyThresholds(table Table, thresholds Thresholds) ValidationResult {
	out := table.Clone()
	res := ValidationResult{Table: out, Dropped: make(map[string]int)}

	for _, name := range out.Order {
		bound, ok := thresholds[name]
		if !ok {
			continue
		}
		if unit := out.Units[name]; unit != bound.Unit {
			res.Warnings = append(res.Warnings, UnitMismatchWarning{
				Variable:      name,
				DataUnit:      unit,
				ThresholdUnit: bound.Unit,
			})
			continue
		}
		if bound.Unconstrained() {
			continue
		}

		col := out.Columns[name]
		for i, v := range col {
			if !bound.Allows(v) {
				col[i] = math.NaN()
				res.Dropped[name]++
			}
		}
	}

	return res
}
