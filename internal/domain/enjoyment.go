package domain

import "math"

// ToleranceBoundaryValue is the k constant of the enjoyment curve. Despite
// the name, the score at one tolerance from the ideal is log10(k)+1, not k.
const ToleranceBoundaryValue = 0.9

// Score maps a reading to an enjoyment value in [0, 1] under pref.
// A missing reading scores as NaN so callers can skip it.
func Score(pref Preference, value float64) (float64, error) {
	if !pref.Valid() {
		return 0, ErrMissingPreference
	}
	if Missing(value) {
		return math.NaN(), nil
	}

	d := StandardizedDistance(pref, value)
	term := 1 - d*(1-ToleranceBoundaryValue)
	if term <= 0 {
		return 0, nil
	}

	// log10(term)+1 dips below zero once term < 0.1; the curve is floored
	// there to stay within [0, 1].
	return math.Max(0, math.Log10(term)+1), nil
}

// StandardizedDistance returns |value - ideal| / tolerance.
func StandardizedDistance(pref Preference, value float64) float64 {
	return math.Abs((value - pref.Ideal) / pref.Tolerance)
}
