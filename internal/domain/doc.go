// Package domain scores hourly weather station observations against a
// person's comfort preferences and picks the most enjoyable day of the year.
//
// # Data Source
//
// Observations come from automated weather station exports (for example the
// CoAgMET / Colorado State University "fcl01" station). Each export is a CSV
// with a two-row header: the first row holds variable names, the second their
// units. Column names are normalized by replacing spaces with underscores, so
// "Air Temp" becomes "Air_Temp". The adapters in internal/adapter/station
// turn those files into a [Table]; everything in this package works on that
// typed table and never touches files.
//
// # Station Data Conventions
//
// Timestamps:
//
//	"month/day/year hour:minute" in naive local standard time, e.g.
//	"7/18/2023 14:00". They are localized to a fixed source offset (MST,
//	-07:00, no daylight saving) and converted to a target zone
//	(America/Denver) before they reach this package. Readings are hourly.
//
// Missing values:
//
//	Represented as NaN in [Table.Columns]. A reading dropped by validation
//	becomes NaN; its row survives, so other variables at the same timestamp
//	stay usable.
//
// Structural columns:
//
//	"Date_and_Time" and "Station" are not variables. They never get a
//	preference and cannot be selected as factors.
//
// # Scoring Pipeline
//
//	raw table
//	  -> ApplyThresholds     (out-of-range readings become NaN)
//	  -> DetectDaytime       (ISO week -> hours with mean Solar_Rad >= 50)
//	  -> DaytimeRows         (rows inside the window)
//	  -> DerivePreferences   (ideal = daytime mean, tolerance = mean daily stddev / 2)
//	  -> ScoreFactor         (per-reading enjoyment, averaged per day-of-year)
//	  -> Combine             (product across factors, 1.0 for missing days)
//	  -> Best                (highest day-of-year, lowest day wins ties)
//
// # Enjoyment Function
//
// For a preference (ideal, tolerance) and a reading v, the standardized
// distance is d = |v - ideal| / tolerance. With k = [ToleranceBoundaryValue]
// the score is log10(1 - d(1-k)) + 1, floored at zero. The score is exactly 1
// at the ideal, about 0.954 at d = 1 (not k), and 0 once d reaches 9.
package domain
