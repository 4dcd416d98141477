package analyzer_test

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/perfect-day/internal/analyzer"
	"github.com/couchcryptid/perfect-day/internal/domain"
	"github.com/couchcryptid/perfect-day/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const perfectDay = 200

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// yearTable builds hourly rows for every day of 2024 (a leap year). Solar
// radiation is 500 from 10:00 to 14:00 and zero otherwise. Daytime Air_Temp
// and RH sit at 60 / 0.5 except on day 200, where they are 70 / 0.4. Night
// readings are far off so they would ruin any score they leaked into.
func yearTable(dimWeek int) domain.Table {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := domain.DaysInYear * 24

	table := domain.Table{
		Times:    make([]time.Time, n),
		Stations: make([]string, n),
		Columns: map[string][]float64{
			"Air_Temp":  make([]float64, n),
			"RH":        make([]float64, n),
			"Solar_Rad": make([]float64, n),
			"Wind_Dir":  make([]float64, n),
		},
		Units: map[string]string{
			"Air_Temp":  "deg F",
			"RH":        "fraction",
			"Solar_Rad": "W/m^2",
			"Wind_Dir":  "deg",
		},
		Order: []string{"Air_Temp", "RH", "Solar_Rad", "Wind_Dir"},
	}

	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		table.Times[i] = ts
		table.Stations[i] = "fcl01"

		lit := ts.Hour() >= 10 && ts.Hour() <= 14
		if _, week := ts.ISOWeek(); week == dimWeek {
			lit = false
		}

		temp, rh, solar := 20.0, 0.95, 0.0
		if lit {
			solar = 500
			temp, rh = 60, 0.5
			if ts.YearDay() == perfectDay {
				temp, rh = 70, 0.4
			}
		}
		table.Columns["Air_Temp"][i] = temp
		table.Columns["RH"][i] = rh
		table.Columns["Solar_Rad"][i] = solar
		table.Columns["Wind_Dir"][i] = float64((i * 15) % 360)
	}
	return table
}

func newAnalyzer(t *testing.T, table domain.Table, thresholds domain.Thresholds) (*analyzer.Analyzer, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	a, err := analyzer.New(table, thresholds, analyzer.DefaultOptions(), discardLogger(), metrics)
	require.NoError(t, err)
	return a, metrics
}

func TestFindPerfectDay_EndToEnd(t *testing.T) {
	a, metrics := newAnalyzer(t, yearTable(0), nil)

	require.NoError(t, a.AddFactor("Air_Temp", "RH"))
	require.NoError(t, a.SetPreference("Air_Temp", 70, 10))
	require.NoError(t, a.SetPreference("RH", 0.4, 0.2))

	res, err := a.FindPerfectDay()
	require.NoError(t, err)

	assert.Equal(t, domain.DayScore{Day: perfectDay, Score: 1}, res.Best)
	assert.Equal(t, []string{"Air_Temp", "RH"}, res.Factors)
	require.Len(t, res.Ranking, 5)
	assert.Equal(t, res.Best, res.Ranking[0])

	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, "Air_Temp", res.Breakdown[0].Variable)
	assert.Equal(t, "deg F", res.Breakdown[0].Unit)
	assert.Equal(t, 1.0, res.Breakdown[0].Score)
	assert.Equal(t, 5, res.Breakdown[0].Readings)
	assert.Equal(t, domain.SourceOverridden, res.Breakdown[1].Preference.Source)

	for day := 1; day <= domain.DaysInYear; day++ {
		assert.GreaterOrEqual(t, res.Daily.At(day), 0.0)
		assert.LessOrEqual(t, res.Daily.At(day), 1.0)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BestScore))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SelectedFactors))
}

func TestFindPerfectDay_EmptyFactorSet(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)

	_, err := a.FindPerfectDay()
	require.ErrorIs(t, err, domain.ErrEmptyFactorSet)

	require.NoError(t, a.AddFactor("RH"))
	require.NoError(t, a.RemoveFactor("RH"))
	_, err = a.FindPerfectDay()
	require.ErrorIs(t, err, domain.ErrEmptyFactorSet)
}

func TestFindPerfectDay_MissingPreference(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)

	// Daytime readings are constant within each day, so no tolerance can be derived.
	_, ok := a.Preference("Air_Temp")
	require.False(t, ok)

	require.NoError(t, a.AddFactor("Air_Temp"))
	_, err := a.FindPerfectDay()
	require.ErrorIs(t, err, domain.ErrMissingPreference)

	require.NoError(t, a.SetPreference("Air_Temp", 70, 10))
	res, err := a.FindPerfectDay()
	require.NoError(t, err)
	assert.Equal(t, perfectDay, res.Best.Day)
}

func TestNew_RequiresSolarColumn(t *testing.T) {
	table := yearTable(0)
	delete(table.Columns, "Solar_Rad")
	table.Order = []string{"Air_Temp", "RH", "Wind_Dir"}

	_, err := analyzer.New(table, nil, analyzer.DefaultOptions(), discardLogger(), observability.NewMetricsForTesting())
	require.ErrorIs(t, err, domain.ErrUnknownVariable)
}

func TestNew_ValidatesAgainstThresholds(t *testing.T) {
	lo, hi := 0.0, 0.9
	thresholds := domain.Thresholds{
		"RH":       {Min: &lo, Max: &hi, Unit: "fraction"},
		"Air_Temp": {Min: &lo, Unit: "deg C"},
	}

	a, metrics := newAnalyzer(t, yearTable(0), thresholds)

	// Night RH (0.95) is above the maximum and dropped; Air_Temp is skipped.
	rh := a.Table().Columns["RH"]
	assert.True(t, math.IsNaN(rh[0]))
	assert.Equal(t, 0.5, rh[10])

	require.Len(t, a.Warnings(), 1)
	var mismatch domain.UnitMismatchWarning
	require.ErrorAs(t, a.Warnings()[0], &mismatch)
	assert.Equal(t, "Air_Temp", mismatch.Variable)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UnitMismatches))
	assert.Equal(t, float64(domain.DaysInYear*19), testutil.ToFloat64(metrics.ReadingsDropped.WithLabelValues("RH")))
	assert.Equal(t, float64(domain.DaysInYear*24), testutil.ToFloat64(metrics.RowsLoaded))
}

func TestNew_DerivesPreferencesFromDaytimeOnly(t *testing.T) {
	table := yearTable(0)
	// Give Air_Temp a spread inside the daytime window: 60, 61, 62, 63, 64.
	for i, ts := range table.Times {
		if h := ts.Hour(); h >= 10 && h <= 14 {
			table.Columns["Air_Temp"][i] = float64(50 + h)
		}
	}

	a, _ := newAnalyzer(t, table, nil)

	p, ok := a.Preference("Air_Temp")
	require.True(t, ok)
	assert.InDelta(t, 62.0, p.Ideal, 1e-9)
	assert.InDelta(t, math.Sqrt(2.5)/2, p.Tolerance, 1e-9)
	assert.Equal(t, domain.SourceDerived, p.Source)

	_, ok = a.Preference("Wind_Dir")
	assert.False(t, ok, "direction has no comfort midpoint")
}

func TestNew_DimWeekIsExcluded(t *testing.T) {
	_, week := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, perfectDay-1).ISOWeek()
	a, _ := newAnalyzer(t, yearTable(week), nil)

	hours, ok := a.Window()[week]
	require.True(t, ok, "the week is present in the data")
	assert.Empty(t, hours)

	require.NoError(t, a.AddFactor("Air_Temp", "RH"))
	require.NoError(t, a.SetPreference("Air_Temp", 70, 10))
	require.NoError(t, a.SetPreference("RH", 0.4, 0.2))

	res, err := a.FindPerfectDay()
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Daily.At(perfectDay), "no evidence, no penalty")
	assert.Equal(t, 0, res.Breakdown[0].Readings)
}

func TestAddFactor_UnknownVariableLeavesSetUntouched(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)
	require.NoError(t, a.AddFactor("RH"))

	err := a.AddFactor("Air_Temp", "Dew_Point")
	require.ErrorIs(t, err, domain.ErrUnknownVariable)
	assert.Equal(t, []string{"RH"}, a.Factors())
}

func TestAddFactor_IgnoresDuplicates(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)

	require.NoError(t, a.AddFactor("RH", "RH", "Air_Temp"))
	require.NoError(t, a.AddFactor("RH"))
	assert.Equal(t, []string{"RH", "Air_Temp"}, a.Factors())
}

func TestRemoveFactor(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)
	require.NoError(t, a.AddFactor("RH", "Air_Temp"))

	require.ErrorIs(t, a.RemoveFactor("Dew_Point"), domain.ErrUnknownVariable)
	assert.Equal(t, []string{"RH", "Air_Temp"}, a.Factors())

	require.NoError(t, a.RemoveFactor("RH", "Wind_Dir"))
	assert.Equal(t, []string{"Air_Temp"}, a.Factors())
}

func TestSetPreference_Errors(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)
	require.NoError(t, a.SetPreference("RH", 0.4, 0.2))

	err := a.SetPreference("Dew_Point", 40, 5)
	require.ErrorIs(t, err, domain.ErrUnknownVariable)

	err = a.SetPreference("RH", 0.5, 0)
	require.ErrorIs(t, err, domain.ErrInvalidTolerance)

	p, ok := a.Preference("RH")
	require.True(t, ok)
	assert.Equal(t, domain.Preference{Ideal: 0.4, Tolerance: 0.2, Source: domain.SourceOverridden}, p)
}

func TestSetPreference_RescoresSelectedFactor(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)
	require.NoError(t, a.AddFactor("Air_Temp"))
	require.NoError(t, a.SetPreference("Air_Temp", 60, 10))

	res, err := a.FindPerfectDay()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Best.Day)

	require.NoError(t, a.SetPreference("Air_Temp", 70, 10))
	res, err = a.FindPerfectDay()
	require.NoError(t, err)
	assert.Equal(t, perfectDay, res.Best.Day)
}

func TestSetPreferenceRange(t *testing.T) {
	a, metrics := newAnalyzer(t, yearTable(0), nil)
	require.NoError(t, a.SetPreference("RH", 0.4, 0.2))

	require.NoError(t, a.SetPreferenceRange("RH", 0.6, 0.6))

	p, _ := a.Preference("RH")
	assert.Equal(t, domain.Preference{Ideal: 0.6, Tolerance: 0.2, Source: domain.SourceOverridden}, p)

	require.Len(t, a.Warnings(), 1)
	var degenerate domain.DegenerateRangeWarning
	require.ErrorAs(t, a.Warnings()[0], &degenerate)
	assert.Equal(t, domain.RangeWidened, degenerate.Correction)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DegenerateRanges.WithLabelValues(domain.RangeWidened)))

	require.NoError(t, a.SetPreferenceRange("Air_Temp", 80, 60))
	p, _ = a.Preference("Air_Temp")
	assert.Equal(t, 70.0, p.Ideal)
	assert.Equal(t, 10.0, p.Tolerance)
	assert.Len(t, a.Warnings(), 2)
}

func TestSetPreferenceRange_SingleValueWithoutTolerance(t *testing.T) {
	a, _ := newAnalyzer(t, yearTable(0), nil)

	err := a.SetPreferenceRange("Air_Temp", 70, 70)
	require.ErrorIs(t, err, domain.ErrMissingPreference)
	_, ok := a.Preference("Air_Temp")
	assert.False(t, ok)
	assert.Empty(t, a.Warnings())
}

func TestIsUserError(t *testing.T) {
	assert.True(t, analyzer.IsUserError(domain.ErrEmptyFactorSet))
	assert.True(t, analyzer.IsUserError(domain.ErrUnknownVariable))
	assert.False(t, analyzer.IsUserError(io.ErrUnexpectedEOF))
}
