package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// No config file in an empty directory: defaults apply.
	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "data/trade_analysis.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, -0.5, cfg.Analysis.Elasticity)
	assert.Equal(t, 3, cfg.Analysis.ForecastHorizon)
	assert.Equal(t, 0.5, cfg.Analysis.VolatilityWeight)
	assert.Equal(t, 0.5, cfg.Analysis.EnvRiskWeight)
	assert.Equal(t, "analysis", cfg.Report.OutputDir)
	assert.LessOrEqual(t, cfg.Analysis.StartYear, cfg.Analysis.EndYear)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("database:\n  dsn: /tmp/other.db\nanalysis:\n  forecast_horizon: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644))

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Analysis.ForecastHorizon)
	// Values absent from the file keep their defaults.
	assert.Equal(t, -0.5, cfg.Analysis.Elasticity)
}
