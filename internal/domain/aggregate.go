package domain

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DaysInYear is the number of day-of-year slots, leap day included.
const DaysInYear = 366

// DailyScores holds one combined score per day-of-year; index 0 is day 1.
type DailyScores [DaysInYear]float64

// NeutralScores returns a series where every day scores 1.0.
func NeutralScores() DailyScores {
	var s DailyScores
	for i := range s {
		s[i] = 1
	}
	return s
}

// At returns the score for a 1-based day-of-year.
func (s *DailyScores) At(day int) float64 { return s[day-1] }

// DayScore pairs a day-of-year with its score.
type DayScore struct {
	Day   int     `json:"day_of_year"`
	Score float64 `json:"score"`
}

// FactorSeries is one factor's mean daytime enjoyment per day-of-year.
// Days without a daytime reading are absent.
type FactorSeries struct {
	Variable string
	Means    map[int]float64
	Counts   map[int]int
}

// ScoreFactor scores every daytime reading of variable and averages the
// scores per day-of-year.
func ScoreFactor(table Table, rows []int, variable string, pref Preference) (FactorSeries, error) {
	col, ok := table.Columns[variable]
	if !ok {
		return FactorSeries{}, fmt.Errorf("%w: %s", ErrUnknownVariable, variable)
	}
	if !pref.Valid() {
		return FactorSeries{}, fmt.Errorf("%w: %s", ErrMissingPreference, variable)
	}

	byDay := make(map[int][]float64)
	for _, i := range rows {
		v := col[i]
		if Missing(v) {
			continue
		}
		score, err := Score(pref, v)
		if err != nil {
			return FactorSeries{}, fmt.Errorf("score %s: %w", variable, err)
		}
		day := table.Times[i].YearDay()
		byDay[day] = append(byDay[day], score)
	}

	series := FactorSeries{
		Variable: variable,
		Means:    make(map[int]float64, len(byDay)),
		Counts:   make(map[int]int, len(byDay)),
	}
	for day, scores := range byDay {
		series.Means[day] = stat.Mean(scores, nil)
		series.Counts[day] = len(scores)
	}
	return series, nil
}

// Combine multiplies factor series day by day, starting from 1.0 for every
// day. A day missing from a factor leaves that factor's contribution at 1.0.
func Combine(factors ...FactorSeries) DailyScores {
	out := NeutralScores()
	for _, f := range factors {
		for day, mean := range f.Means {
			out[day-1] *= mean
		}
	}
	return out
}

// Best returns the highest-scoring day. Ties go to the lowest day-of-year.
func Best(scores DailyScores) DayScore {
	best := DayScore{Day: 1, Score: scores[0]}
	for i := 1; i < len(scores); i++ {
		if scores[i] > best.Score {
			best = DayScore{Day: i + 1, Score: scores[i]}
		}
	}
	return best
}

// Rank returns the n best days, highest score first, ties by day-of-year.
func Rank(scores DailyScores, n int) []DayScore {
	all := make([]DayScore, len(scores))
	for i, s := range scores {
		all[i] = DayScore{Day: i + 1, Score: s}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})
	if n < 0 || n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Aggregate scores each selected factor and combines them. It fails with
// [ErrEmptyFactorSet] when factors is empty and with [ErrMissingPreference]
// when any factor lacks a usable preference.
func Aggregate(table Table, rows []int, factors []string, prefs Preferences) (DailyScores, []FactorSeries, error) {
	if len(factors) == 0 {
		return DailyScores{}, nil, ErrEmptyFactorSet
	}

	series := make([]FactorSeries, 0, len(factors))
	for _, name := range factors {
		pref, ok := prefs[name]
		if !ok {
			return DailyScores{}, nil, fmt.Errorf("%w: %s", ErrMissingPreference, name)
		}
		s, err := ScoreFactor(table, rows, name, pref)
		if err != nil {
			return DailyScores{}, nil, err
		}
		series = append(series, s)
	}

	return Combine(series...), series, nil
}
