package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariable is returned when a name is not a variable column.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrMissingPreference is returned when scoring needs a preference that
	// is absent or has no usable tolerance.
	ErrMissingPreference = errors.New("missing preference")

	// ErrEmptyFactorSet is returned when a perfect day is requested without
	// any factor of enjoyment selected.
	ErrEmptyFactorSet = errors.New("no factors of enjoyment selected")

	// ErrInvalidTolerance is returned when an override carries a tolerance
	// that is not strictly positive.
	ErrInvalidTolerance = errors.New("tolerance must be a positive number")
)

// UnitMismatchWarning reports a variable whose threshold unit differs from
// the observation unit. The variable is passed through unfiltered.
type UnitMismatchWarning struct {
	Variable      string
	DataUnit      string
	ThresholdUnit string
}

func (w UnitMismatchWarning) Error() string {
	return fmt.Sprintf("unit mismatch for %s in threshold check (data %q, threshold %q), skipping",
		w.Variable, w.DataUnit, w.ThresholdUnit)
}

// Range corrections applied by [RangePreference].
const (
	RangeSwapped = "swapped"
	RangeWidened = "widened"
)

// DegenerateRangeWarning reports a preference range that had to be corrected
// before it could be turned into an (ideal, tolerance) pair.
type DegenerateRangeWarning struct {
	Variable   string
	Low        float64
	High       float64
	Correction string // RangeSwapped or RangeWidened
}

func (w DegenerateRangeWarning) Error() string {
	switch w.Correction {
	case RangeSwapped:
		return fmt.Sprintf("range for %s has low %g above high %g, swapping", w.Variable, w.Low, w.High)
	default:
		return fmt.Sprintf("range for %s is a single value %g, widening by current tolerance", w.Variable, w.Low)
	}
}
