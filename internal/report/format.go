package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteText prints r for a terminal.
func WriteText(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	station := r.Station
	if station == "" {
		station = "station"
	}
	fmt.Fprintf(tw, "Perfect day for %s: %s (day %d), %.1f%% enjoyment\n",
		station, r.Best.Label, r.Best.DayOfYear, r.Best.Percent)
	fmt.Fprintf(tw, "Factors: %s\n", strings.Join(r.Factors, ", "))
	if r.Coverage == 0 {
		fmt.Fprintln(tw, "Note: at least one factor has no daytime readings on this day and was scored neutral.")
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FACTOR\tIDEAL\tTOLERANCE\tSOURCE\tSCORE\tREADINGS")
	for _, f := range r.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%d\n",
			f.Variable,
			withUnit(f.Preference.Ideal, f.Unit),
			withUnit(f.Preference.Tolerance, f.Unit),
			f.Preference.Source,
			Percent(f.Score),
			f.Readings,
		)
	}

	if len(r.Ranking) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "RANK\tDATE\tDAY\tENJOYMENT")
		for i, d := range r.Ranking {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f%%\n", i+1, d.Label, d.DayOfYear, d.Percent)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Warnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(tw, "  - %s\n", msg)
		}
	}

	return tw.Flush()
}

func withUnit(v float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%g %s", v, unit)
}
