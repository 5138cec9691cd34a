package analysis

import (
	"math"
	"testing"

	"trade-analytics-go/internal/database"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScenarioApply(t *testing.T) {
	testCases := []struct {
		name        string
		scenario    Scenario
		base        float64
		expected    float64
		expectError bool
	}{
		{
			name:     "Tariff increase with default elasticity",
			scenario: Scenario{Type: ScenarioTariffChange, TariffChangePct: 10},
			base:     1000,
			// 1000 * (1 + 10 * -0.5 / 100) = 950
			expected: 950,
		},
		{
			name:     "Tariff cut expands trade",
			scenario: Scenario{Type: ScenarioTariffChange, TariffChangePct: -10},
			base:     1000,
			expected: 1050,
		},
		{
			name:     "Custom elasticity",
			scenario: Scenario{Type: ScenarioTariffChange, TariffChangePct: 10, Elasticity: -1},
			base:     1000,
			expected: 900,
		},
		{
			name:     "Trade agreement",
			scenario: Scenario{Type: ScenarioTradeAgreement, AgreementImpactPct: 5},
			base:     1000,
			expected: 1050,
		},
		{
			name:     "Severe sanctions halve trade",
			scenario: Scenario{Type: ScenarioSanctions, Severity: SeveritySevere},
			base:     1000,
			expected: 500,
		},
		{
			name:     "Moderate sanctions",
			scenario: Scenario{Type: ScenarioSanctions, Severity: SeverityModerate},
			base:     1000,
			expected: 750,
		},
		{
			name:     "Carbon tariff below the cap",
			scenario: Scenario{Type: ScenarioCarbonTariff, CarbonTariffRate: 25, CarbonIntensity: 1},
			base:     1000,
			// reduction = 1 * 10 * (25/50) = 5%
			expected: 950,
		},
		{
			name:     "Carbon tariff reduction is capped at 15%",
			scenario: Scenario{Type: ScenarioCarbonTariff, CarbonTariffRate: 100, CarbonIntensity: 50},
			base:     1000,
			expected: 850,
		},
		{
			name:        "Unknown severity",
			scenario:    Scenario{Type: ScenarioSanctions, Severity: "apocalyptic"},
			expectError: true,
		},
		{
			name:        "Unknown scenario type",
			scenario:    Scenario{Type: "asteroid"},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.scenario.Apply(tc.base)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestScenarioProjectCompounds(t *testing.T) {
	scenario := Scenario{Type: ScenarioTradeAgreement, AgreementImpactPct: 10}

	points, err := scenario.Project(1000, 3)

	assert.NoError(t, err)
	assert.Len(t, points, 3)
	assert.InDelta(t, 1100, points[0].Value, 1e-9)
	assert.InDelta(t, 1210, points[1].Value, 1e-9)
	assert.InDelta(t, 1331, points[2].Value, 1e-9)
	assert.InDelta(t, 33.1, points[2].ChangePct, 1e-9)
}

func TestScenarioProjectShockDuration(t *testing.T) {
	scenario := Scenario{Type: ScenarioEconomicShock, GDPImpactPct: -10, ShockDuration: 2}

	points, err := scenario.Project(1000, 4)

	assert.NoError(t, err)
	assert.Len(t, points, 4)
	assert.InDelta(t, 900, points[0].Value, 1e-9)
	assert.InDelta(t, 810, points[1].Value, 1e-9)
	// After the shock window the trajectory holds flat.
	assert.InDelta(t, 810, points[2].Value, 1e-9)
	assert.InDelta(t, 810, points[3].Value, 1e-9)
}

func TestFitTradeRegressionsRecoversLogLogSlope(t *testing.T) {
	// Synthetic economy where exports = GDP^0.8 exactly, so the log-log
	// fit must recover a slope of 0.8 with a perfect R-squared.
	var summaries []TradeSummary
	var indicators []database.IndicatorRow
	gdps := []float64{1000, 2000, 4000, 8000, 16000, 32000}
	for i, gdp := range gdps {
		exports := math.Pow(gdp, 0.8)
		summaries = append(summaries, TradeSummary{
			CountryID:   uint(i + 1),
			Country:     "Testland",
			Year:        2020,
			TotalExport: exports,
			TotalImport: exports * 0.9,
			Balance:     exports * 0.1,
		})
		indicators = append(indicators, database.IndicatorRow{
			CountryID: uint(i + 1), Year: 2020, Name: "gdp", Value: gdp,
		})
	}

	results := FitTradeRegressions(zap.NewNop(), summaries, indicators, "gdp", "growth", "unemployment")

	assert.Len(t, results, 3)
	exportsFit := results[0]
	assert.False(t, exportsFit.Missing)
	assert.InDelta(t, 0.8, exportsFit.Coeffs[0], 1e-6)
	assert.InDelta(t, 1.0, exportsFit.R2, 1e-6)

	// No growth or unemployment rows exist, so the balance fit is skipped
	// and flagged rather than fitted on nothing.
	assert.True(t, results[2].Missing)
}

func TestFitBalanceRegression(t *testing.T) {
	// balance = 100 + 50*growth - 20*unemployment, exactly.
	var summaries []TradeSummary
	var indicators []database.IndicatorRow
	cases := []struct{ growth, unemployment float64 }{
		{1, 4}, {2, 5}, {3, 3}, {4, 6}, {2.5, 4.5},
	}
	for i, c := range cases {
		balance := 100 + 50*c.growth - 20*c.unemployment
		summaries = append(summaries, TradeSummary{
			CountryID: uint(i + 1), Country: "Testland", Year: 2020, Balance: balance,
		})
		indicators = append(indicators,
			database.IndicatorRow{CountryID: uint(i + 1), Year: 2020, Name: "growth", Value: c.growth},
			database.IndicatorRow{CountryID: uint(i + 1), Year: 2020, Name: "unemployment", Value: c.unemployment},
		)
	}

	results := FitTradeRegressions(zap.NewNop(), summaries, indicators, "gdp", "growth", "unemployment")

	balanceFit := results[2]
	assert.False(t, balanceFit.Missing)
	assert.InDelta(t, 100, balanceFit.Intercept, 1e-6)
	assert.InDelta(t, 50, balanceFit.Coeffs[0], 1e-6)
	assert.InDelta(t, -20, balanceFit.Coeffs[1], 1e-6)
	assert.InDelta(t, 1.0, balanceFit.R2, 1e-6)
}

func TestCorrelationMatrix(t *testing.T) {
	var indicators []database.IndicatorRow
	for i := 1; i <= 4; i++ {
		v := float64(i)
		indicators = append(indicators,
			database.IndicatorRow{CountryID: uint(i), Year: 2020, Name: "a", Value: v},
			database.IndicatorRow{CountryID: uint(i), Year: 2020, Name: "b", Value: -2 * v},
		)
	}

	names, matrix := CorrelationMatrix(indicators)

	assert.Equal(t, []string{"a", "b"}, names)
	assert.InDelta(t, 1.0, matrix[0][0], 1e-9)
	// Perfectly anti-correlated pair.
	assert.InDelta(t, -1.0, matrix[0][1], 1e-9)
	assert.InDelta(t, -1.0, matrix[1][0], 1e-9)
}

func TestScenarioDescribe(t *testing.T) {
	s := Scenario{Type: ScenarioTariffChange, TariffChangePct: 10}
	assert.Contains(t, s.Describe(), "tariff change")
	assert.Contains(t, s.Describe(), "-0.50")
}
