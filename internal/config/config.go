package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Loader backends for observation and threshold files.
const (
	LoaderCSV    = "csv"
	LoaderDuckDB = "duckdb"
)

// Config holds all analyzer settings, populated from environment variables.
type Config struct {
	ThresholdsPath string
	Loader         string

	// Timestamps in the observation file are naive local standard time at
	// SourceOffset and are converted to TargetTimezone.
	SourceOffset   *time.Location
	TargetTimezone *time.Location

	SolarVariable         string
	DaytimeSolarThreshold float64
	// NoToleranceVariables never receive a derived preference: direction and
	// precipitation-like fields have no comfort midpoint.
	NoToleranceVariables []string

	ReportYear  int
	RankingSize int

	KafkaBrokers     []string
	KafkaReportTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// PublishEnabled reports whether reports should be sent to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceOffset, err := parseOffset(sharedcfg.EnvOrDefault("SOURCE_UTC_OFFSET", "-07:00"))
	if err != nil {
		return nil, err
	}

	target, err := time.LoadLocation(sharedcfg.EnvOrDefault("TARGET_TIMEZONE", "America/Denver"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_TIMEZONE: %w", err)
	}

	threshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("DAYTIME_SOLAR_THRESHOLD", "50"), 64)
	if err != nil || threshold < 0 {
		return nil, errors.New("invalid DAYTIME_SOLAR_THRESHOLD")
	}

	year, err := strconv.Atoi(sharedcfg.EnvOrDefault("REPORT_YEAR", "0"))
	if err != nil || year < 0 {
		return nil, errors.New("invalid REPORT_YEAR")
	}

	ranking, err := strconv.Atoi(sharedcfg.EnvOrDefault("RANKING_SIZE", "5"))
	if err != nil || ranking < 1 || ranking > 366 {
		return nil, errors.New("invalid RANKING_SIZE: must be between 1 and 366")
	}

	cfg := &Config{
		ThresholdsPath:        sharedcfg.EnvOrDefault("THRESHOLDS_PATH", "thresholds.csv"),
		Loader:                strings.ToLower(sharedcfg.EnvOrDefault("LOADER", LoaderCSV)),
		SourceOffset:          sourceOffset,
		TargetTimezone:        target,
		SolarVariable:         sharedcfg.EnvOrDefault("SOLAR_VARIABLE", "Solar_Rad"),
		DaytimeSolarThreshold: threshold,
		NoToleranceVariables:  splitList(sharedcfg.EnvOrDefault("NO_TOLERANCE_VARIABLES", "Wind_Dir,Gust_Dir,Precip,Rain,Snow")),
		ReportYear:            year,
		RankingSize:           ranking,
		KafkaBrokers:          sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaReportTopic:      sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "perfect-day-reports"),
		HTTPAddr:              sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:              sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout:       shutdownTimeout,
	}

	if cfg.Loader != LoaderCSV && cfg.Loader != LoaderDuckDB {
		return nil, fmt.Errorf("invalid LOADER %q: want %s or %s", cfg.Loader, LoaderCSV, LoaderDuckDB)
	}
	if cfg.SolarVariable == "" {
		return nil, errors.New("SOLAR_VARIABLE is required")
	}
	if cfg.PublishEnabled() && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// parseOffset turns "-07:00" into a fixed zone without daylight saving.
func parseOffset(s string) (*time.Location, error) {
	t, err := time.Parse("-07:00", strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_UTC_OFFSET %q: %w", s, err)
	}
	_, offset := t.Zone()
	return time.FixedZone("UTC"+s, offset), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
