package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/couchcryptid/perfect-day/internal/adapter/duckdb"
	"github.com/couchcryptid/perfect-day/internal/adapter/kafka"
	"github.com/couchcryptid/perfect-day/internal/adapter/station"
	"github.com/couchcryptid/perfect-day/internal/analyzer"
	"github.com/couchcryptid/perfect-day/internal/config"
	"github.com/couchcryptid/perfect-day/internal/domain"
	"github.com/couchcryptid/perfect-day/internal/observability"
	"github.com/couchcryptid/perfect-day/internal/profile"
	"github.com/couchcryptid/perfect-day/internal/report"
)

var (
	metricsOnce sync.Once
	metrics     *observability.Metrics
)

// processMetrics registers the collectors with the default registry once
// per process.
func processMetrics() *observability.Metrics {
	metricsOnce.Do(func() { metrics = observability.NewMetrics() })
	return metrics
}

// setup loads the environment config, applies flag overrides, and builds the
// logger.
func setup(flags *analysisFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := flags.override(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, observability.NewLogger(cfg), nil
}

func openLoader(cfg *config.Config) (station.SheetLoader, func(), error) {
	switch cfg.Loader {
	case config.LoaderCSV:
		return station.CSVLoader{}, func() {}, nil
	case config.LoaderDuckDB:
		db, err := duckdb.Open()
		if err != nil {
			return nil, nil, err
		}
		return duckdb.NewLoader(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown loader %q: want %s or %s", cfg.Loader, config.LoaderCSV, config.LoaderDuckDB)
	}
}

// loadThresholds reads the threshold file. A missing file disables
// validation rather than failing the run.
func loadThresholds(ctx context.Context, loader station.SheetLoader, path string, logger *slog.Logger) (domain.Thresholds, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warn("threshold file not found, readings will not be validated", "path", path)
		return nil, nil
	}
	sheet, err := loader.LoadSheet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	thresholds, err := station.ParseThresholds(sheet)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	return thresholds, nil
}

// runAnalysis loads the station history, applies the caller's preferences,
// and builds the report.
func runAnalysis(ctx context.Context, cfg *config.Config, flags *analysisFlags, dataPath string, logger *slog.Logger, m *observability.Metrics) (report.Report, error) {
	loader, closeLoader, err := openLoader(cfg)
	if err != nil {
		return report.Report{}, err
	}
	defer closeLoader()

	sheet, err := loader.LoadSheet(ctx, dataPath)
	if err != nil {
		return report.Report{}, fmt.Errorf("load observations: %w", err)
	}
	table, err := station.ParseObservations(sheet, cfg.SourceOffset, cfg.TargetTimezone)
	if err != nil {
		return report.Report{}, fmt.Errorf("load observations: %w", err)
	}
	thresholds, err := loadThresholds(ctx, loader, cfg.ThresholdsPath, logger)
	if err != nil {
		return report.Report{}, err
	}

	a, err := analyzer.New(table, thresholds, analyzer.Options{
		SolarVariable:  cfg.SolarVariable,
		SolarThreshold: cfg.DaytimeSolarThreshold,
		NoTolerance:    cfg.NoToleranceVariables,
		RankingSize:    cfg.RankingSize,
	}, logger, m)
	if err != nil {
		return report.Report{}, err
	}

	if err := applyPreferences(a, flags); err != nil {
		return report.Report{}, withVariables(err, a)
	}

	res, err := a.FindPerfectDay()
	if err != nil {
		return report.Report{}, withVariables(err, a)
	}

	rep := report.Build(res, table.Station(), cfg.ReportYear, a.Warnings())
	logger.Info("report ready", "run_id", rep.RunID, "date", rep.Best.Date, "percent", rep.Best.Percent)
	return rep, nil
}

// applyPreferences applies the profile, then explicit preferences, then
// ranges, then factors.
func applyPreferences(a *analyzer.Analyzer, flags *analysisFlags) error {
	if flags.profile != "" {
		p, err := profile.Load(flags.profile)
		if err != nil {
			return err
		}
		if err := p.Apply(a); err != nil {
			return err
		}
	}
	for _, s := range flags.prefs {
		name, ideal, tol, err := parseAssignment(s)
		if err != nil {
			return fmt.Errorf("--pref: %w", err)
		}
		if err := a.SetPreference(name, ideal, tol); err != nil {
			return err
		}
	}
	for _, s := range flags.ranges {
		name, low, high, err := parseAssignment(s)
		if err != nil {
			return fmt.Errorf("--range: %w", err)
		}
		if err := a.SetPreferenceRange(name, low, high); err != nil {
			return err
		}
	}
	if len(flags.factors) > 0 {
		return a.AddFactor(flags.factors...)
	}
	return nil
}

// withVariables lists the known variables on errors a caller can fix by
// picking a different name.
func withVariables(err error, a *analyzer.Analyzer) error {
	if errors.Is(err, domain.ErrUnknownVariable) || errors.Is(err, domain.ErrEmptyFactorSet) {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(a.Variables(), ", "))
	}
	return err
}

func publish(ctx context.Context, cfg *config.Config, rep report.Report, logger *slog.Logger, m *observability.Metrics) error {
	p := kafka.NewPublisher(cfg, logger)
	defer func() {
		if err := p.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}()

	if err := p.Publish(ctx, rep); err != nil {
		m.PublishErrors.Inc()
		return err
	}
	m.ReportsPublished.Inc()
	return nil
}
