package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePreferences(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	times := []time.Time{day1, day1.Add(time.Hour), day1.Add(2 * time.Hour), day2, day2.Add(time.Hour)}

	table := newTestTable(times,
		[]string{"Air_Temp", "Wind_Dir", "Flat"},
		map[string][]float64{
			"Air_Temp": {10, 20, 30, 0, 4},
			"Wind_Dir": {90, 180, 270, 0, 45},
			"Flat":     {5, 5, 5, 5, 5},
		}, nil)

	prefs, skipped := DerivePreferences(table, allRows(table), map[string]bool{"Wind_Dir": true})

	require.Contains(t, prefs, "Air_Temp")
	p := prefs["Air_Temp"]
	assert.InDelta(t, 12.8, p.Ideal, 1e-12)
	// day 1: stddev(10,20,30) = 10; day 2: stddev(0,4) = 2*sqrt(2)
	assert.InDelta(t, (10.0/2+math.Sqrt(8)/2)/2, p.Tolerance, 1e-12)
	assert.Equal(t, SourceDerived, p.Source)

	assert.NotContains(t, prefs, "Wind_Dir", "excluded variables get no preference")
	assert.NotContains(t, prefs, "Flat", "zero spread is not a usable tolerance")
	assert.Equal(t, []string{"Flat"}, skipped)
}

func TestDerivePreferences_OnlyUsesGivenRows(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	times := hourly(start, 4)
	table := newTestTable(times, []string{"RH"},
		map[string][]float64{"RH": {0.2, 0.4, 0.9, nan}}, nil)

	prefs, _ := DerivePreferences(table, []int{0, 1, 3}, nil)

	require.Contains(t, prefs, "RH")
	assert.InDelta(t, 0.3, prefs["RH"].Ideal, 1e-12)
	assert.InDelta(t, 0.1414213562/2, prefs["RH"].Tolerance, 1e-9)
}

func TestDerivePreferences_SingleReadingDaysAreIgnored(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
	}
	table := newTestTable(times, []string{"RH"}, map[string][]float64{"RH": {0.2, 0.8}}, nil)

	prefs, skipped := DerivePreferences(table, allRows(table), nil)

	assert.Empty(t, prefs)
	assert.Equal(t, []string{"RH"}, skipped)
}

func TestDerivePreferences_NoDaytimeRows(t *testing.T) {
	times := hourly(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3)
	table := newTestTable(times, []string{"RH"}, map[string][]float64{"RH": {0.1, 0.2, 0.3}}, nil)

	prefs, skipped := DerivePreferences(table, nil, nil)

	assert.Empty(t, prefs)
	assert.Equal(t, []string{"RH"}, skipped)
}

func TestNewPreference(t *testing.T) {
	p, err := NewPreference(70, 10)
	require.NoError(t, err)
	assert.Equal(t, Preference{Ideal: 70, Tolerance: 10, Source: SourceOverridden}, p)

	for _, tol := range []float64{0, -1, nan, math.Inf(1)} {
		_, err := NewPreference(70, tol)
		require.ErrorIs(t, err, ErrInvalidTolerance, "tolerance %g", tol)
	}

	_, err = NewPreference(nan, 1)
	require.Error(t, err)
}

func TestRangePreference(t *testing.T) {
	current := Preference{Ideal: 0.5, Tolerance: 0.2, Source: SourceDerived}

	t.Run("ordinary range", func(t *testing.T) {
		p, warnings, err := RangePreference("Air_Temp", 60, 80, Preference{}, false)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, Preference{Ideal: 70, Tolerance: 10, Source: SourceOverridden}, p)
	})

	t.Run("reversed range is swapped", func(t *testing.T) {
		p, warnings, err := RangePreference("Air_Temp", 80, 60, Preference{}, false)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, RangeSwapped, warnings[0].Correction)
		assert.Equal(t, 70.0, p.Ideal)
		assert.Equal(t, 10.0, p.Tolerance)
	})

	t.Run("single value is widened by current tolerance", func(t *testing.T) {
		p, warnings, err := RangePreference("RH", 0.6, 0.6, current, true)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, DegenerateRangeWarning{Variable: "RH", Low: 0.6, High: 0.6, Correction: RangeWidened}, warnings[0])
		assert.Equal(t, Preference{Ideal: 0.6, Tolerance: 0.2, Source: SourceOverridden}, p)
	})

	t.Run("single value without current preference", func(t *testing.T) {
		_, _, err := RangePreference("RH", 0.6, 0.6, Preference{}, false)
		require.ErrorIs(t, err, ErrMissingPreference)
	})

	t.Run("NaN bound", func(t *testing.T) {
		_, _, err := RangePreference("RH", nan, 0.6, current, true)
		require.Error(t, err)
	})
}

func TestPreferenceSource_String(t *testing.T) {
	assert.Equal(t, "derived", SourceDerived.String())
	assert.Equal(t, "overridden", SourceOverridden.String())
	assert.Equal(t, "unknown", PreferenceSource(9).String())
}

func TestPreferenceSource_JSON(t *testing.T) {
	data, err := json.Marshal(Preference{Ideal: 70, Tolerance: 10, Source: SourceOverridden})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ideal":70,"tolerance":10,"source":"overridden"}`, string(data))

	var p Preference
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, SourceOverridden, p.Source)

	require.Error(t, json.Unmarshal([]byte(`{"source":"guessed"}`), &p))
}
