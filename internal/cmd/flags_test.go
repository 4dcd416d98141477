package cmd

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/perfect-day/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignment(t *testing.T) {
	name, a, b, err := parseAssignment("Air_Temp=70:10")
	require.NoError(t, err)
	assert.Equal(t, "Air_Temp", name)
	assert.Equal(t, 70.0, a)
	assert.Equal(t, 10.0, b)

	name, a, b, err = parseAssignment(" RH = 0.25 : 0.45 ")
	require.NoError(t, err)
	assert.Equal(t, "RH", name)
	assert.Equal(t, 0.25, a)
	assert.Equal(t, 0.45, b)

	_, a, _, err = parseAssignment("Air_Temp=-5:10")
	require.NoError(t, err)
	assert.Equal(t, -5.0, a)
}

func TestParseAssignment_Invalid(t *testing.T) {
	for _, s := range []string{"", "Air_Temp", "=70:10", "Air_Temp=70", "Air_Temp=warm:10", "Air_Temp=70:x"} {
		t.Run(s, func(t *testing.T) {
			_, _, _, err := parseAssignment(s)
			require.Error(t, err)
		})
	}
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer

	got, err := resolveFormat("auto", &buf)
	require.NoError(t, err)
	assert.Equal(t, formatJSON, got, "non-terminal output gets JSON")

	got, err = resolveFormat("TEXT", &buf)
	require.NoError(t, err)
	assert.Equal(t, formatText, got)

	_, err = resolveFormat("yaml", &buf)
	require.Error(t, err)
}

func TestAnalysisFlagsOverride(t *testing.T) {
	cfg := &config.Config{ThresholdsPath: "thresholds.csv", Loader: config.LoaderCSV, RankingSize: 5}
	flags := analysisFlags{thresholds: "limits.csv", loader: "DuckDB", top: 10, year: 2024}

	require.NoError(t, flags.override(cfg))
	assert.Equal(t, "limits.csv", cfg.ThresholdsPath)
	assert.Equal(t, config.LoaderDuckDB, cfg.Loader)
	assert.Equal(t, 10, cfg.RankingSize)
	assert.Equal(t, 2024, cfg.ReportYear)
}

func TestAnalysisFlagsOverride_Errors(t *testing.T) {
	tests := []struct {
		name  string
		flags analysisFlags
	}{
		{"top too large", analysisFlags{top: 400}},
		{"negative year", analysisFlags{year: -1}},
		{"publish without brokers", analysisFlags{publish: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.flags.override(&config.Config{RankingSize: 5}))
		})
	}
}
