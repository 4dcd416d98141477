package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/perfect-day/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	formatAuto = "auto"
	formatText = "text"
	formatJSON = "json"
)

// analysisFlags are shared by every command that runs an analysis.
type analysisFlags struct {
	thresholds string
	loader     string
	profile    string
	factors    []string
	prefs      []string
	ranges     []string
	top        int
	year       int
	publish    bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.thresholds, "thresholds", "t", "", "Threshold file (default: $THRESHOLDS_PATH)")
	fs.StringVar(&f.loader, "loader", "", "File loader: csv or duckdb (default: $LOADER)")
	fs.StringVarP(&f.profile, "profile", "p", "", "YAML preference profile")
	fs.StringSliceVarP(&f.factors, "factor", "f", nil, "Variable to treat as a factor of enjoyment (repeatable)")
	fs.StringArrayVar(&f.prefs, "pref", nil, "Explicit preference as name=ideal:tolerance (repeatable)")
	fs.StringArrayVar(&f.ranges, "range", nil, "Comfortable range as name=low:high (repeatable)")
	fs.IntVar(&f.top, "top", 0, "Number of best days to list (default: $RANKING_SIZE)")
	fs.IntVar(&f.year, "year", 0, "Reference year for calendar dates (default: $REPORT_YEAR or the current year)")
	fs.BoolVar(&f.publish, "publish", false, "Publish the report to $KAFKA_REPORT_TOPIC")
}

// override applies flags that were set on top of the environment config.
func (f *analysisFlags) override(cfg *config.Config) error {
	if f.thresholds != "" {
		cfg.ThresholdsPath = f.thresholds
	}
	if f.loader != "" {
		cfg.Loader = strings.ToLower(f.loader)
	}
	if f.top < 0 || f.top > 366 {
		return fmt.Errorf("--top must be between 1 and 366, got %d", f.top)
	}
	if f.top > 0 {
		cfg.RankingSize = f.top
	}
	if f.year < 0 {
		return fmt.Errorf("--year must be positive, got %d", f.year)
	}
	if f.year > 0 {
		cfg.ReportYear = f.year
	}
	if f.publish && !cfg.PublishEnabled() {
		return errors.New("--publish needs KAFKA_BROKERS")
	}
	return nil
}

// parseAssignment splits "Air_Temp=70:10" into the variable and its two
// numbers.
func parseAssignment(s string) (name string, first, second float64, err error) {
	name, values, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, 0, fmt.Errorf("invalid assignment %q: want name=a:b", s)
	}
	a, b, ok := strings.Cut(values, ":")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid assignment %q: want name=a:b", s)
	}
	if first, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return "", 0, 0, fmt.Errorf("invalid assignment %q: %w", s, err)
	}
	if second, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return "", 0, 0, fmt.Errorf("invalid assignment %q: %w", s, err)
	}
	return name, first, second, nil
}

// resolveFormat picks text for terminals and JSON for pipes when format is
// auto.
func resolveFormat(format string, out io.Writer) (string, error) {
	switch strings.ToLower(format) {
	case formatText:
		return formatText, nil
	case formatJSON:
		return formatJSON, nil
	case formatAuto, "":
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return formatText, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q: want auto, text or json", format)
	}
}
