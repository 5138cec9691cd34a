package analysis

import (
	"fmt"
	"math"
	"sort"

	"trade-analytics-go/internal/database"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scenario types.
const (
	ScenarioTariffChange   = "tariff_change"
	ScenarioTradeAgreement = "trade_agreement"
	ScenarioEconomicShock  = "economic_shock"
	ScenarioSanctions      = "sanctions"
	ScenarioCarbonTariff   = "carbon_tariff"
)

// Sanctions severity tiers and their annual trade reductions in percent.
const (
	SeverityLight    = "light"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

var severityReduction = map[string]float64{
	SeverityLight:    10,
	SeverityModerate: 25,
	SeveritySevere:   50,
}

// DefaultElasticity is the assumed percentage change in trade volume per
// percentage point of tariff change.
const DefaultElasticity = -0.5

// The carbon-tariff transform caps the cost-derived reduction at 15% per
// year regardless of intensity or rate.
const maxCarbonReductionPct = 15

// Scenario is a parameterized what-if transform on a base trade value.
// Each type reads only its own parameters; all transforms are closed-form.
type Scenario struct {
	Type string

	// tariff_change
	TariffChangePct float64
	Elasticity      float64 // zero means DefaultElasticity

	// trade_agreement
	AgreementImpactPct float64

	// economic_shock
	GDPImpactPct  float64
	ShockDuration int // years the shock applies; zero means the whole horizon

	// sanctions
	Severity string

	// carbon_tariff
	CarbonTariffRate float64 // $/ton CO2
	CarbonIntensity  float64 // CO2 per $ of trade of the affected country
}

// Describe renders a short human-readable label for report output.
func (s Scenario) Describe() string {
	switch s.Type {
	case ScenarioTariffChange:
		e := s.Elasticity
		if e == 0 {
			e = DefaultElasticity
		}
		return fmt.Sprintf("tariff change %+.1f%% (elasticity %.2f)", s.TariffChangePct, e)
	case ScenarioTradeAgreement:
		return fmt.Sprintf("trade agreement, %+.1f%% annual impact", s.AgreementImpactPct)
	case ScenarioEconomicShock:
		if s.ShockDuration > 0 {
			return fmt.Sprintf("economic shock %+.1f%% GDP for %d years", s.GDPImpactPct, s.ShockDuration)
		}
		return fmt.Sprintf("economic shock %+.1f%% GDP", s.GDPImpactPct)
	case ScenarioSanctions:
		return fmt.Sprintf("%s sanctions", s.Severity)
	case ScenarioCarbonTariff:
		return fmt.Sprintf("carbon tariff $%.0f/ton", s.CarbonTariffRate)
	default:
		return s.Type
	}
}

// annualChangePct returns the percentage applied to the trade value in the
// given projection year (1-based).
func (s Scenario) annualChangePct(year int) (float64, error) {
	switch s.Type {
	case ScenarioTariffChange:
		elasticity := s.Elasticity
		if elasticity == 0 {
			elasticity = DefaultElasticity
		}
		return s.TariffChangePct * elasticity, nil
	case ScenarioTradeAgreement:
		return s.AgreementImpactPct, nil
	case ScenarioEconomicShock:
		if s.ShockDuration > 0 && year > s.ShockDuration {
			return 0, nil
		}
		return s.GDPImpactPct, nil
	case ScenarioSanctions:
		reduction, ok := severityReduction[s.Severity]
		if !ok {
			return 0, fmt.Errorf("unknown sanctions severity %q", s.Severity)
		}
		return -reduction, nil
	case ScenarioCarbonTariff:
		reduction := s.CarbonIntensity * 10 * (s.CarbonTariffRate / 50)
		if reduction > maxCarbonReductionPct {
			reduction = maxCarbonReductionPct
		}
		return -reduction, nil
	default:
		return 0, fmt.Errorf("unknown scenario type %q", s.Type)
	}
}

// Apply runs a single period of the scenario against a base trade value.
// For tariff_change this is new = base * (1 + change_pct * elasticity / 100).
func (s Scenario) Apply(base float64) (float64, error) {
	change, err := s.annualChangePct(1)
	if err != nil {
		return 0, err
	}
	return base * (1 + change/100), nil
}

// ProjectionPoint is one year of a scenario projection.
type ProjectionPoint struct {
	Year      int // 1-based offset from the base year
	Value     float64
	ChangePct float64 // cumulative change against the base value
}

// Project compounds the scenario over the given number of years.
func (s Scenario) Project(base float64, years int) ([]ProjectionPoint, error) {
	points := make([]ProjectionPoint, 0, years)
	value := base
	for year := 1; year <= years; year++ {
		change, err := s.annualChangePct(year)
		if err != nil {
			return nil, err
		}
		value *= 1 + change/100
		points = append(points, ProjectionPoint{
			Year:      year,
			Value:     value,
			ChangePct: (value - base) / base * 100,
		})
	}
	return points, nil
}

// RegressionResult is one descriptive fit. Missing marks a fit that was
// skipped (insufficient complete-case rows); its coefficients are not
// meaningful and the report must label it as unavailable.
type RegressionResult struct {
	Name      string
	Terms     []string  // predictor names, intercept excluded
	Intercept float64
	Coeffs    []float64
	R2        float64
	N         int
	Missing   bool
	Note      string
}

// indicatorKey looks up values by (country, year).
type indicatorKey struct {
	countryID uint
	year      int
}

func indicatorValues(rows []database.IndicatorRow, name string) map[indicatorKey]float64 {
	values := make(map[indicatorKey]float64)
	for _, row := range rows {
		if row.Name == name {
			values[indicatorKey{row.CountryID, row.Year}] = row.Value
		}
	}
	return values
}

// FitTradeRegressions produces the three descriptive fits: log exports and
// log imports against log GDP, and trade balance against GDP growth and
// unemployment. Indicator names are opaque keys supplied by the caller.
// Fits with too few complete-case rows are returned marked missing with a
// logged warning; the remaining fits still run.
func FitTradeRegressions(
	logger *zap.Logger,
	summaries []TradeSummary,
	indicators []database.IndicatorRow,
	gdpName, growthName, unemploymentName string,
) []RegressionResult {
	gdp := indicatorValues(indicators, gdpName)
	growth := indicatorValues(indicators, growthName)
	unemployment := indicatorValues(indicators, unemploymentName)

	results := []RegressionResult{
		fitLogLog(logger, "log(exports) ~ log(GDP)", summaries, gdp, func(s TradeSummary) float64 { return s.TotalExport }),
		fitLogLog(logger, "log(imports) ~ log(GDP)", summaries, gdp, func(s TradeSummary) float64 { return s.TotalImport }),
		fitBalance(logger, summaries, growth, unemployment, growthName, unemploymentName),
	}
	return results
}

// fitLogLog runs simple OLS of log(metric) on log(GDP) over complete cases
// with strictly positive values on both sides.
func fitLogLog(
	logger *zap.Logger,
	name string,
	summaries []TradeSummary,
	gdp map[indicatorKey]float64,
	metric func(TradeSummary) float64,
) RegressionResult {
	var xs, ys []float64
	for _, summary := range summaries {
		g, ok := gdp[indicatorKey{summary.CountryID, summary.Year}]
		m := metric(summary)
		if !ok || g <= 0 || m <= 0 {
			continue
		}
		xs = append(xs, math.Log(g))
		ys = append(ys, math.Log(m))
	}

	result := RegressionResult{Name: name, Terms: []string{"log(GDP)"}, N: len(xs)}
	if len(xs) < 3 {
		result.Missing = true
		result.Note = fmt.Sprintf("insufficient complete-case rows (%d)", len(xs))
		logger.Warn("Skipping regression", zap.String("fit", name), zap.Int("rows", len(xs)))
		return result
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	result.Intercept = alpha
	result.Coeffs = []float64{beta}

	estimates := make([]float64, len(xs))
	for i, x := range xs {
		estimates[i] = alpha + beta*x
	}
	result.R2 = stat.RSquaredFrom(estimates, ys, nil)
	return result
}

// fitBalance runs multiple OLS of trade balance on GDP growth and
// unemployment via the normal equations (QR solve).
func fitBalance(
	logger *zap.Logger,
	summaries []TradeSummary,
	growth, unemployment map[indicatorKey]float64,
	growthName, unemploymentName string,
) RegressionResult {
	var rows [][2]float64
	var ys []float64
	for _, summary := range summaries {
		key := indicatorKey{summary.CountryID, summary.Year}
		g, okG := growth[key]
		u, okU := unemployment[key]
		if !okG || !okU {
			continue
		}
		rows = append(rows, [2]float64{g, u})
		ys = append(ys, summary.Balance)
	}

	name := fmt.Sprintf("balance ~ %s + %s", growthName, unemploymentName)
	result := RegressionResult{Name: name, Terms: []string{growthName, unemploymentName}, N: len(ys)}
	if len(ys) < 4 {
		result.Missing = true
		result.Note = fmt.Sprintf("insufficient complete-case rows (%d)", len(ys))
		logger.Warn("Skipping regression", zap.String("fit", name), zap.Int("rows", len(ys)))
		return result
	}

	design := mat.NewDense(len(ys), 3, nil)
	for i, row := range rows {
		design.Set(i, 0, 1)
		design.Set(i, 1, row[0])
		design.Set(i, 2, row[1])
	}
	response := mat.NewVecDense(len(ys), ys)

	var qr mat.QR
	qr.Factorize(design)
	var coeffs mat.VecDense
	if err := qr.SolveVecTo(&coeffs, false, response); err != nil {
		result.Missing = true
		result.Note = "design matrix is rank deficient"
		logger.Warn("Skipping regression", zap.String("fit", name), zap.Error(err))
		return result
	}

	result.Intercept = coeffs.AtVec(0)
	result.Coeffs = []float64{coeffs.AtVec(1), coeffs.AtVec(2)}

	estimates := make([]float64, len(ys))
	for i, row := range rows {
		estimates[i] = result.Intercept + result.Coeffs[0]*row[0] + result.Coeffs[1]*row[1]
	}
	result.R2 = stat.RSquaredFrom(estimates, ys, nil)
	return result
}

// CorrelationMatrix computes pairwise Pearson correlations between the
// named indicators over complete (country, year) cases. Returns the sorted
// indicator names and the symmetric matrix; pairs with fewer than two
// complete cases are NaN.
func CorrelationMatrix(indicators []database.IndicatorRow) ([]string, [][]float64) {
	nameSet := make(map[string]struct{})
	for _, row := range indicators {
		nameSet[row.Name] = struct{}{}
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	byName := make(map[string]map[indicatorKey]float64, len(names))
	for _, name := range names {
		byName[name] = indicatorValues(indicators, name)
	}

	matrix := make([][]float64, len(names))
	for i := range matrix {
		matrix[i] = make([]float64, len(names))
	}
	for i, a := range names {
		for j, b := range names {
			if j < i {
				matrix[i][j] = matrix[j][i]
				continue
			}
			matrix[i][j] = pairCorrelation(byName[a], byName[b])
		}
	}
	return names, matrix
}

func pairCorrelation(a, b map[indicatorKey]float64) float64 {
	var xs, ys []float64
	for key, av := range a {
		if bv, ok := b[key]; ok {
			xs = append(xs, av)
			ys = append(ys, bv)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
