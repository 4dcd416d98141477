package domain

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PreferenceSource tells whether a preference was derived from history or
// set by the user.
type PreferenceSource int

const (
	SourceDerived PreferenceSource = iota
	SourceOverridden
)

func (s PreferenceSource) String() string {
	switch s {
	case SourceDerived:
		return "derived"
	case SourceOverridden:
		return "overridden"
	default:
		return "unknown"
	}
}

// MarshalText encodes the source by name.
func (s PreferenceSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a source name written by MarshalText.
func (s *PreferenceSource) UnmarshalText(text []byte) error {
	switch string(text) {
	case "derived":
		*s = SourceDerived
	case "overridden":
		*s = SourceOverridden
	default:
		return fmt.Errorf("unknown preference source %q", text)
	}
	return nil
}

// Preference is a comfort target for one variable: readings at Ideal are
// fully enjoyable, and Tolerance sets how fast enjoyment falls off.
type Preference struct {
	Ideal     float64          `json:"ideal"`
	Tolerance float64          `json:"tolerance"`
	Source    PreferenceSource `json:"source"`
}

// Valid reports whether the preference can be used for scoring.
func (p Preference) Valid() bool {
	return validTolerance(p.Tolerance) && !math.IsNaN(p.Ideal) && !math.IsInf(p.Ideal, 0)
}

func validTolerance(tol float64) bool {
	return tol > 0 && !math.IsInf(tol, 0)
}

// Preferences maps variable names to preferences.
type Preferences map[string]Preference

// Clone returns a shallow copy of the map.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// NewPreference builds a user override.
func NewPreference(ideal, tolerance float64) (Preference, error) {
	if !validTolerance(tolerance) {
		return Preference{}, fmt.Errorf("%w: got %g", ErrInvalidTolerance, tolerance)
	}
	if math.IsNaN(ideal) || math.IsInf(ideal, 0) {
		return Preference{}, fmt.Errorf("ideal must be a finite number: got %g", ideal)
	}
	return Preference{Ideal: ideal, Tolerance: tolerance, Source: SourceOverridden}, nil
}

// DerivePreferences computes a default preference for every variable over
// the given daytime rows, skipping the excluded variables. The ideal is the
// mean of all daytime readings. The tolerance is the mean, across
// days-of-year, of half the within-day sample standard deviation; days with
// fewer than two readings carry no spread and are ignored.
//
// Variables left without a usable tolerance are returned in skipped and get
// no preference.
func DerivePreferences(table Table, rows []int, excluded map[string]bool) (prefs Preferences, skipped []string) {
	prefs = Preferences{}

	for _, name := range table.Order {
		if excluded[name] {
			continue
		}
		col := table.Columns[name]

		var all []float64
		byDay := make(map[int][]float64)
		for _, i := range rows {
			v := col[i]
			if Missing(v) {
				continue
			}
			all = append(all, v)
			day := table.Times[i].YearDay()
			byDay[day] = append(byDay[day], v)
		}
		if len(all) == 0 {
			skipped = append(skipped, name)
			continue
		}

		days := make([]int, 0, len(byDay))
		for day := range byDay {
			days = append(days, day)
		}
		sort.Ints(days)

		var spreads []float64
		for _, day := range days {
			values := byDay[day]
			if len(values) < 2 {
				continue
			}
			spreads = append(spreads, stat.StdDev(values, nil)/2)
		}

		pref := Preference{Ideal: stat.Mean(all, nil), Source: SourceDerived}
		if len(spreads) > 0 {
			pref.Tolerance = stat.Mean(spreads, nil)
		}
		if !pref.Valid() {
			skipped = append(skipped, name)
			continue
		}
		prefs[name] = pref
	}

	return prefs, skipped
}

// RangePreference converts a comfortable range [low, high] into an override
// centered on the range with the half-width as tolerance. A reversed range is
// swapped; a single-value range is widened on both sides by the current
// tolerance, which must then exist.
func RangePreference(variable string, low, high float64, current Preference, hasCurrent bool) (Preference, []DegenerateRangeWarning, error) {
	if math.IsNaN(low) || math.IsNaN(high) {
		return Preference{}, nil, fmt.Errorf("range for %s must be numeric", variable)
	}

	var warnings []DegenerateRangeWarning
	if low > high {
		warnings = append(warnings, DegenerateRangeWarning{Variable: variable, Low: low, High: high, Correction: RangeSwapped})
		low, high = high, low
	}

	if low == high {
		if !hasCurrent || !current.Valid() {
			return Preference{}, nil, fmt.Errorf("%w: %s has no tolerance to widen a single-value range", ErrMissingPreference, variable)
		}
		warnings = append(warnings, DegenerateRangeWarning{Variable: variable, Low: low, High: high, Correction: RangeWidened})
		// Widening by t on both sides centers on low with half-width t.
		return Preference{Ideal: low, Tolerance: current.Tolerance, Source: SourceOverridden}, warnings, nil
	}

	pref, err := NewPreference((low+high)/2, (high-low)/2)
	if err != nil {
		return Preference{}, nil, fmt.Errorf("range for %s: %w", variable, err)
	}
	return pref, warnings, nil
}
