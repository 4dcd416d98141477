package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/perfect-day/internal/adapter/station"
	"github.com/couchcryptid/perfect-day/internal/domain"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("validation failed")

// phase tracks pass/fail for one validation phase.
type phase struct {
	name     string
	problems []string
}

func (p *phase) problemf(format string, args ...any) {
	p.problems = append(p.problems, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.problems) == 0 }

// columnStats summarizes one variable before and after threshold checks.
type columnStats struct {
	name     string
	unit     string
	readings int
	missing  int
	dropped  int
}

func newValidateCmd() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "validate <observations.csv>",
		Short: "Check a station file against its thresholds before analyzing it",
		Long: `Validate parses the observation file, applies the threshold file, and
checks that units agree, that readings survive validation, and that the solar
column yields a daytime window. It exits non-zero when any phase fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(&flags)
			if err != nil {
				return err
			}

			loader, closeLoader, err := openLoader(cfg)
			if err != nil {
				return err
			}
			defer closeLoader()

			sheet, err := loader.LoadSheet(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load observations: %w", err)
			}
			table, err := station.ParseObservations(sheet, cfg.SourceOffset, cfg.TargetTimezone)
			if err != nil {
				return fmt.Errorf("load observations: %w", err)
			}
			thresholds, err := loadThresholds(cmd.Context(), loader, cfg.ThresholdsPath, logger)
			if err != nil {
				return err
			}

			res := domain.ApplyThresholds(table, thresholds)
			window := domain.DetectDaytime(res.Table, cfg.SolarVariable, cfg.DaytimeSolarThreshold)

			stats := summarize(table, res)
			phases := []*phase{
				checkUnits(res),
				checkReadings(stats, thresholds),
				checkDaytime(res.Table, window, cfg.SolarVariable),
			}
			return writeValidation(cmd.OutOrStdout(), table, stats, phases)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&flags.thresholds, "thresholds", "t", "", "Threshold file (default: $THRESHOLDS_PATH)")
	fs.StringVar(&flags.loader, "loader", "", "File loader: csv or duckdb (default: $LOADER)")
	return cmd
}

func summarize(table domain.Table, res domain.ValidationResult) []columnStats {
	stats := make([]columnStats, 0, len(table.Order))
	for _, name := range table.Order {
		s := columnStats{name: name, unit: table.Units[name], dropped: res.Dropped[name]}
		for _, v := range table.Columns[name] {
			if domain.Missing(v) {
				s.missing++
			} else {
				s.readings++
			}
		}
		stats = append(stats, s)
	}
	return stats
}

func checkUnits(res domain.ValidationResult) *phase {
	p := &phase{name: "Units agree with thresholds"}
	for _, w := range res.Warnings {
		p.problemf("%s", w.Error())
	}
	return p
}

func checkReadings(stats []columnStats, thresholds domain.Thresholds) *phase {
	p := &phase{name: "Readings survive threshold checks"}
	for _, s := range stats {
		if s.readings == 0 {
			p.problemf("%s has no readings", s.name)
			continue
		}
		if _, ok := thresholds[s.name]; ok && s.dropped == s.readings {
			p.problemf("%s: all %d readings are outside the thresholds", s.name, s.readings)
		}
	}
	return p
}

func checkDaytime(table domain.Table, window domain.DaytimeWindow, solar string) *phase {
	p := &phase{name: "Daytime window detected"}
	if !table.Has(solar) {
		p.problemf("solar column %s not found", solar)
		return p
	}
	for _, week := range window.Weeks() {
		if len(window[week]) > 0 {
			return p
		}
	}
	p.problemf("no week has an hour with mean %s at or above the threshold", solar)
	return p
}

func writeValidation(w io.Writer, table domain.Table, stats []columnStats, phases []*phase) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Station %s: %d rows\n\n", table.Station(), table.Len())
	fmt.Fprintln(tw, "VARIABLE\tUNIT\tREADINGS\tMISSING\tDROPPED")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", s.name, s.unit, s.readings, s.missing, s.dropped)
	}
	fmt.Fprintln(tw)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d problems)", len(p.problems))
			allPassed = false
		}
		fmt.Fprintf(tw, "%s\t%s\n", p.name, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, msg := range p.problems {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, msg)
		}
	}

	if !allPassed {
		return errValidationFailed
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return nil
}
