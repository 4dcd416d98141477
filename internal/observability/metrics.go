package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for an analysis run.
type Metrics struct {
	RowsLoaded       prometheus.Counter
	ReadingsDropped  *prometheus.CounterVec // labels: variable
	UnitMismatches   prometheus.Counter
	DegenerateRanges *prometheus.CounterVec // labels: correction={swapped,widened}
	DaytimeWeeks     prometheus.Gauge
	DerivedVariables prometheus.Gauge
	SelectedFactors  prometheus.Gauge
	AnalysisDuration prometheus.Histogram
	BestScore        prometheus.Gauge
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all analyzer metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RowsLoaded,
		m.ReadingsDropped,
		m.UnitMismatches,
		m.DegenerateRanges,
		m.DaytimeWeeks,
		m.DerivedVariables,
		m.SelectedFactors,
		m.AnalysisDuration,
		m.BestScore,
		m.ReportsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "perfect_day",
			Name:      "rows_loaded_total",
			Help:      "Observation rows loaded into the analyzer.",
		}),
		ReadingsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "perfect_day",
			Name:      "readings_dropped_total",
			Help:      "Readings turned missing by threshold validation.",
		}, []string{"variable"}),
		UnitMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "perfect_day",
			Name:      "unit_mismatches_total",
			Help:      "Variables skipped during validation because units disagree.",
		}),
		DegenerateRanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "perfect_day",
			Name:      "degenerate_ranges_total",
			Help:      "Preference ranges corrected before use.",
		}, []string{"correction"}),
		DaytimeWeeks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perfect_day",
			Name:      "daytime_weeks",
			Help:      "ISO weeks with at least one daytime hour.",
		}),
		DerivedVariables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perfect_day",
			Name:      "derived_preferences",
			Help:      "Variables with an auto-derived preference.",
		}),
		SelectedFactors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perfect_day",
			Name:      "selected_factors",
			Help:      "Factors of enjoyment currently selected.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "perfect_day",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a perfect-day aggregation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		BestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perfect_day",
			Name:      "best_score",
			Help:      "Combined enjoyment score of the most recent perfect day.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "perfect_day",
			Name:      "reports_published_total",
			Help:      "Reports written to the Kafka report topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "perfect_day",
			Name:      "publish_errors_total",
			Help:      "Failed report publications.",
		}),
	}
}
