// Package analyzer holds one analysis run over one station's history: the
// validated table, its daytime window, preferences, and selected factors.
package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/couchcryptid/perfect-day/internal/domain"
	"github.com/couchcryptid/perfect-day/internal/observability"
)

// Options configures an Analyzer.
type Options struct {
	SolarVariable  string
	SolarThreshold float64
	// NoTolerance lists variables that never get a derived preference.
	NoTolerance []string
	// RankingSize is how many top days a Result carries.
	RankingSize int
}

// DefaultOptions returns the settings used for Fort Collins station data.
func DefaultOptions() Options {
	return Options{
		SolarVariable:  "Solar_Rad",
		SolarThreshold: domain.DefaultSolarThreshold,
		NoTolerance:    []string{"Wind_Dir", "Gust_Dir", "Precip", "Rain", "Snow"},
		RankingSize:    5,
	}
}

// Analyzer scores a station's history against personal preferences. It is
// not safe for concurrent use; each run owns its own instance.
type Analyzer struct {
	table    domain.Table
	window   domain.DaytimeWindow
	rows     []int
	prefs    domain.Preferences
	factors  []string
	series   map[string]domain.FactorSeries
	warnings []error
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New validates the table against thresholds, detects the daytime window,
// and derives default preferences.
func New(table domain.Table, thresholds domain.Thresholds, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Analyzer, error) {
	if !table.Has(opts.SolarVariable) {
		return nil, fmt.Errorf("%w: solar radiation column %s not found", domain.ErrUnknownVariable, opts.SolarVariable)
	}

	a := &Analyzer{
		series:  make(map[string]domain.FactorSeries),
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
	metrics.RowsLoaded.Add(float64(table.Len()))

	validated := domain.ApplyThresholds(table, thresholds)
	a.table = validated.Table
	for _, w := range validated.Warnings {
		a.warn(w)
		metrics.UnitMismatches.Inc()
	}
	for _, name := range a.table.Order {
		if n := validated.Dropped[name]; n > 0 {
			logger.Debug("dropped out-of-range readings", "variable", name, "count", n)
			metrics.ReadingsDropped.WithLabelValues(name).Add(float64(n))
		}
	}

	a.window = domain.DetectDaytime(a.table, opts.SolarVariable, opts.SolarThreshold)
	a.rows = domain.DaytimeRows(a.table, a.window)
	metrics.DaytimeWeeks.Set(float64(countLitWeeks(a.window)))

	excluded := make(map[string]bool, len(opts.NoTolerance))
	for _, name := range opts.NoTolerance {
		excluded[name] = true
	}
	prefs, skipped := domain.DerivePreferences(a.table, a.rows, excluded)
	a.prefs = prefs
	for _, name := range skipped {
		logger.Info("no usable tolerance in daytime history, preference must be set explicitly", "variable", name)
	}
	metrics.DerivedVariables.Set(float64(len(prefs)))

	logger.Info("analyzer ready",
		"rows", a.table.Len(),
		"daytime_rows", len(a.rows),
		"weeks", len(a.window),
		"derived_preferences", len(prefs),
	)
	return a, nil
}

func countLitWeeks(w domain.DaytimeWindow) int {
	n := 0
	for _, hours := range w {
		if len(hours) > 0 {
			n++
		}
	}
	return n
}

// Table returns the validated observation table.
func (a *Analyzer) Table() domain.Table { return a.table }

// Window returns the daytime window.
func (a *Analyzer) Window() domain.DaytimeWindow { return a.window }

// Variables returns the names that can take a preference or be a factor.
func (a *Analyzer) Variables() []string { return a.table.Variables() }

// Warnings returns every warning raised so far, oldest first.
func (a *Analyzer) Warnings() []error {
	out := make([]error, len(a.warnings))
	copy(out, a.warnings)
	return out
}

func (a *Analyzer) warn(w error) {
	a.warnings = append(a.warnings, w)
	a.logger.Warn(w.Error())
}

func (a *Analyzer) known(name string) error {
	if !a.table.Has(name) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownVariable, name)
	}
	return nil
}

// Preference returns the current preference for name.
func (a *Analyzer) Preference(name string) (domain.Preference, bool) {
	p, ok := a.prefs[name]
	return p, ok
}

// Preferences returns a copy of all current preferences.
func (a *Analyzer) Preferences() domain.Preferences { return a.prefs.Clone() }

// SetPreference replaces the preference for name with (ideal, tolerance).
func (a *Analyzer) SetPreference(name string, ideal, tolerance float64) error {
	if err := a.known(name); err != nil {
		return err
	}
	pref, err := domain.NewPreference(ideal, tolerance)
	if err != nil {
		return fmt.Errorf("set preference for %s: %w", name, err)
	}
	return a.commitPreference(name, pref)
}

// SetPreferenceRange replaces the preference for name with the midpoint and
// half-width of [low, high]. Reversed or single-value ranges are corrected
// with a warning.
func (a *Analyzer) SetPreferenceRange(name string, low, high float64) error {
	if err := a.known(name); err != nil {
		return err
	}
	current, ok := a.prefs[name]
	pref, warnings, err := domain.RangePreference(name, low, high, current, ok)
	if err != nil {
		return err
	}
	if err := a.commitPreference(name, pref); err != nil {
		return err
	}
	for _, w := range warnings {
		a.warn(w)
		a.metrics.DegenerateRanges.WithLabelValues(w.Correction).Inc()
	}
	return nil
}

// commitPreference stores pref and rescores name if it is a selected factor.
// Nothing changes if rescoring fails.
func (a *Analyzer) commitPreference(name string, pref domain.Preference) error {
	if a.selected(name) {
		s, err := domain.ScoreFactor(a.table, a.rows, name, pref)
		if err != nil {
			return err
		}
		a.series[name] = s
	}
	a.prefs[name] = pref
	a.logger.Debug("preference set", "variable", name, "ideal", pref.Ideal, "tolerance", pref.Tolerance)
	return nil
}

// Factors returns the selected factors in the order they were added.
func (a *Analyzer) Factors() []string {
	out := make([]string, len(a.factors))
	copy(out, a.factors)
	return out
}

func (a *Analyzer) selected(name string) bool { return slices.Contains(a.factors, name) }

// AddFactor selects variables as factors of enjoyment. Every name must be a
// known variable; otherwise nothing is added. A factor without a usable
// preference is accepted and only fails when the perfect day is computed.
func (a *Analyzer) AddFactor(names ...string) error {
	for _, name := range names {
		if err := a.known(name); err != nil {
			return err
		}
	}

	var added []string
	scored := make(map[string]domain.FactorSeries)
	for _, name := range names {
		if a.selected(name) || slices.Contains(added, name) {
			continue
		}
		added = append(added, name)
		if pref, ok := a.prefs[name]; ok && pref.Valid() {
			s, err := domain.ScoreFactor(a.table, a.rows, name, pref)
			if err != nil {
				return err
			}
			scored[name] = s
		}
	}

	a.factors = append(a.factors, added...)
	for name, s := range scored {
		a.series[name] = s
	}
	a.metrics.SelectedFactors.Set(float64(len(a.factors)))
	return nil
}

// RemoveFactor deselects variables. Every name must be a known variable;
// names that are not selected are ignored.
func (a *Analyzer) RemoveFactor(names ...string) error {
	for _, name := range names {
		if err := a.known(name); err != nil {
			return err
		}
	}

	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
		delete(a.series, name)
	}
	kept := a.factors[:0]
	for _, f := range a.factors {
		if !drop[f] {
			kept = append(kept, f)
		}
	}
	a.factors = kept
	a.metrics.SelectedFactors.Set(float64(len(a.factors)))
	return nil
}

// FactorScore is one factor's contribution to a day.
type FactorScore struct {
	Variable   string            `json:"variable"`
	Unit       string            `json:"unit,omitempty"`
	Preference domain.Preference `json:"preference"`
	Score      float64           `json:"score"`
	Readings   int               `json:"readings"`
}

// Result is the outcome of FindPerfectDay.
type Result struct {
	Best      domain.DayScore
	Ranking   []domain.DayScore
	Breakdown []FactorScore
	Daily     domain.DailyScores
	Factors   []string
}

// FindPerfectDay combines the selected factors and returns the best
// day-of-year. It fails with domain.ErrEmptyFactorSet when no factor is
// selected and with domain.ErrMissingPreference when any selected factor
// has no usable preference.
func (a *Analyzer) FindPerfectDay() (Result, error) {
	start := time.Now()

	if len(a.factors) == 0 {
		return Result{}, domain.ErrEmptyFactorSet
	}

	series := make([]domain.FactorSeries, 0, len(a.factors))
	for _, name := range a.factors {
		s, ok := a.series[name]
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", domain.ErrMissingPreference, name)
		}
		series = append(series, s)
	}

	daily := domain.Combine(series...)
	best := domain.Best(daily)

	res := Result{
		Best:    best,
		Ranking: domain.Rank(daily, a.opts.RankingSize),
		Daily:   daily,
		Factors: a.Factors(),
	}
	for _, s := range series {
		score, ok := s.Means[best.Day]
		if !ok {
			score = 1
		}
		res.Breakdown = append(res.Breakdown, FactorScore{
			Variable:   s.Variable,
			Unit:       a.table.Units[s.Variable],
			Preference: a.prefs[s.Variable],
			Score:      score,
			Readings:   s.Counts[best.Day],
		})
	}

	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	a.metrics.BestScore.Set(best.Score)
	a.logger.Info("perfect day found", "day_of_year", best.Day, "score", best.Score, "factors", len(series))
	return res, nil
}

// IsUserError reports whether err came from a caller mistake rather than
// from the data or the environment.
func IsUserError(err error) bool {
	return errors.Is(err, domain.ErrUnknownVariable) ||
		errors.Is(err, domain.ErrInvalidTolerance) ||
		errors.Is(err, domain.ErrEmptyFactorSet) ||
		errors.Is(err, domain.ErrMissingPreference)
}
