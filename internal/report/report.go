// Package report turns an analysis result into something people read: the
// best day as a calendar date, enjoyment as a percentage, the runners-up,
// and a week-by-week view of the year.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/perfect-day/internal/analyzer"
	"github.com/couchcryptid/perfect-day/internal/domain"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

const (
	dateLayout  = "2006-01-02"
	labelLayout = "January 2"
)

// Day is one day-of-year as presented to the user.
type Day struct {
	DayOfYear int     `json:"day_of_year"`
	Date      string  `json:"date"`
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Percent   float64 `json:"percent"`
}

// WeekScore is the mean combined score of the days in one ISO week.
type WeekScore struct {
	Week    int     `json:"week"`
	Score   float64 `json:"score"`
	Percent float64 `json:"percent"`
}

// Report is the outcome of one run, ready to print, serve, or publish.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Station     string    `json:"station,omitempty"`
	Year        int       `json:"reference_year"`
	Factors     []string  `json:"factors"`
	Best        Day       `json:"best"`
	// Coverage is the fewest daytime readings any factor has on the best
	// day. Zero means at least one factor had no data and scored neutral.
	Coverage  int                    `json:"coverage"`
	Ranking   []Day                  `json:"ranking"`
	Breakdown []analyzer.FactorScore `json:"breakdown"`
	Weekly    []WeekScore            `json:"weekly"`
	Warnings  []string               `json:"warnings,omitempty"`
}

// Build presents res against a reference year. A year of zero means the
// current year.
func Build(res analyzer.Result, station string, year int, warnings []error) Report {
	now := clock.Now().UTC()
	if year == 0 {
		year = now.Year()
	}

	r := Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		Station:     station,
		Year:        year,
		Factors:     res.Factors,
		Best:        NewDay(year, res.Best),
		Breakdown:   res.Breakdown,
		Weekly:      Weekly(year, res.Daily),
	}

	for i, f := range res.Breakdown {
		if i == 0 || f.Readings < r.Coverage {
			r.Coverage = f.Readings
		}
	}
	for _, d := range res.Ranking {
		r.Ranking = append(r.Ranking, NewDay(year, d))
	}
	for _, w := range warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	return r
}

// NewDay presents a scored day-of-year in the reference year.
func NewDay(year int, d domain.DayScore) Day {
	date := DateForDay(year, d.Day)
	return Day{
		DayOfYear: d.Day,
		Date:      date.Format(dateLayout),
		Label:     date.Format(labelLayout),
		Score:     d.Score,
		Percent:   Percent(d.Score),
	}
}

// DateForDay returns the calendar date of day-of-year day in year. Day 366
// falls on December 31 in a common year.
func DateForDay(year, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if n := daysIn(year); day > n {
		day = n
	}
	return time.Date(year, time.January, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// Percent converts a score in [0, 1] to a percentage rounded to one decimal.
func Percent(score float64) float64 {
	return math.Round(score*1000) / 10
}

// Weekly averages the daily scores of year by ISO week number. Early-January
// and late-December days count toward the week they belong to, even when
// that week is numbered for a neighbouring year.
func Weekly(year int, daily domain.DailyScores) []WeekScore {
	byWeek := make(map[int][]float64)
	for day := 1; day <= daysIn(year); day++ {
		_, week := DateForDay(year, day).ISOWeek()
		byWeek[week] = append(byWeek[week], daily.At(day))
	}

	out := make([]WeekScore, 0, len(byWeek))
	for week, scores := range byWeek {
		mean := stat.Mean(scores, nil)
		out = append(out, WeekScore{Week: week, Score: mean, Percent: Percent(mean)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}
