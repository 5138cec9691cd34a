package main

import (
	"fmt"
	"time"

	"trade-analytics-go/internal/analysis"
	"trade-analytics-go/internal/config"
	"trade-analytics-go/internal/database"
	"trade-analytics-go/internal/loader"
	"trade-analytics-go/internal/logger"
	"trade-analytics-go/internal/report"

	"go.uber.org/zap"
)

// topCountries bounds the number of countries rendered on trend plots,
// scenario tables and forecasts.
const topCountries = 5

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connection successful and schema migrated.")

	// Referential integrity gates the whole run. A dangling id means the
	// store is corrupt and every downstream number would be wrong.
	if err := database.ValidateReferences(db); err != nil {
		log.Fatal("Reference validation failed", zap.Error(err))
	}

	tradeRows, err := database.LoadTradeRows(db, cfg.Analysis.StartYear, cfg.Analysis.EndYear)
	if err != nil {
		log.Fatal("Failed to load trade data", zap.Error(err))
	}
	if len(tradeRows) == 0 {
		log.Fatal("No trade data in the configured year range; run the seed command first",
			zap.Int("start_year", cfg.Analysis.StartYear),
			zap.Int("end_year", cfg.Analysis.EndYear),
		)
	}
	indicatorRows, err := database.LoadIndicatorRows(db, cfg.Analysis.StartYear, cfg.Analysis.EndYear)
	if err != nil {
		log.Fatal("Failed to load economic indicators", zap.Error(err))
	}
	envRows, err := database.LoadLatestEnvironmentalRows(db)
	if err != nil {
		log.Fatal("Failed to load environmental metrics", zap.Error(err))
	}
	activeSanctions, err := database.CountActiveSanctions(db)
	if err != nil {
		log.Fatal("Failed to count active sanctions", zap.Error(err))
	}
	log.Info("Data loaded",
		zap.Int("trade_rows", len(tradeRows)),
		zap.Int("indicator_rows", len(indicatorRows)),
		zap.Int("environmental_rows", len(envRows)),
	)

	summaries := analysis.Aggregate(tradeRows)
	series := analysis.TotalTradeSeries(summaries)
	top := topSeries(summaries, series)

	riskEngine := analysis.NewRiskEngine(log, cfg.Analysis.VolatilityWeight, cfg.Analysis.EnvRiskWeight)
	assessments := riskEngine.Assess(series, envRows)
	if err := riskEngine.PersistScores(db, assessments, time.Now()); err != nil {
		log.Warn("Failed to persist risk scores", zap.Error(err))
	}

	regressions := analysis.FitTradeRegressions(log, summaries, indicatorRows,
		loader.IndicatorGDP, loader.IndicatorGDPGrowth, loader.IndicatorUnemployment)
	indicatorNames, correlations := analysis.CorrelationMatrix(indicatorRows)

	scenarios := runScenarios(log, top, envRows, cfg.Analysis)
	forecasts := runForecasts(log, forecastSeries(summaries, top), cfg.Analysis.ForecastHorizon)

	renderer := report.NewRenderer(log, cfg.Report.OutputDir)
	data := report.Data{
		GeneratedAt: time.Now(),
		Metrics: report.KeyMetrics{
			Countries:       len(series),
			StartYear:       cfg.Analysis.StartYear,
			EndYear:         cfg.Analysis.EndYear,
			TotalTrade:      totalTrade(summaries),
			ActiveSanctions: activeSanctions,
		},
		Summaries:   summaries,
		TopSeries:   top,
		Risk:        assessments,
		Scenarios:   scenarios,
		Regressions: regressions,
		Forecasts:   forecasts,

		IndicatorNames: indicatorNames,
		Correlations:   correlations,
	}
	if err := renderer.Render(data); err != nil {
		log.Fatal("Failed to render report", zap.Error(err))
	}
	log.Info("Analysis complete", zap.String("output_dir", cfg.Report.OutputDir))
}

func totalTrade(summaries []analysis.TradeSummary) float64 {
	var total float64
	for _, s := range summaries {
		total += s.TotalTrade()
	}
	return total
}

// topSeries keeps the series of the highest-volume countries, preserving
// the ranking order.
func topSeries(summaries []analysis.TradeSummary, series []analysis.CountrySeries) []analysis.CountrySeries {
	byCountry := make(map[string]analysis.CountrySeries, len(series))
	for _, s := range series {
		byCountry[s.Country] = s
	}
	var top []analysis.CountrySeries
	for _, trader := range analysis.TopTraders(summaries, topCountries) {
		if s, ok := byCountry[trader.Country]; ok {
			top = append(top, s)
		}
	}
	return top
}

// runScenarios projects a fixed what-if set for each top country from its
// latest observed total trade. A scenario that cannot be applied is logged
// and skipped, never fatal.
func runScenarios(log *zap.Logger, top []analysis.CountrySeries, env []database.EnvironmentalRow, cfg config.Analysis) []report.ScenarioResult {
	intensity := make(map[uint]float64, len(env))
	for _, row := range env {
		intensity[row.CountryID] = row.CarbonIntensity
	}

	var results []report.ScenarioResult
	for _, s := range top {
		if len(s.Values) == 0 {
			continue
		}
		base := s.Values[len(s.Values)-1]
		set := []analysis.Scenario{
			{Type: analysis.ScenarioTariffChange, TariffChangePct: 10, Elasticity: cfg.Elasticity},
			{Type: analysis.ScenarioTradeAgreement, AgreementImpactPct: 5},
			{Type: analysis.ScenarioEconomicShock, GDPImpactPct: -3, ShockDuration: 2},
			{Type: analysis.ScenarioSanctions, Severity: analysis.SeverityModerate},
			{Type: analysis.ScenarioCarbonTariff, CarbonTariffRate: 25, CarbonIntensity: intensity[s.CountryID]},
		}
		for _, scenario := range set {
			projection, err := scenario.Project(base, cfg.ForecastHorizon)
			if err != nil {
				log.Warn("Skipping scenario",
					zap.String("country", s.Country),
					zap.String("scenario", scenario.Type),
					zap.Error(err),
				)
				continue
			}
			results = append(results, report.ScenarioResult{
				Country:    s.Country,
				Scenario:   scenario,
				Projection: projection,
			})
		}
	}
	return results
}

// forecastSeries builds the forecasting workload: the aggregate export and
// import series across all countries, then total trade per top country.
func forecastSeries(summaries []analysis.TradeSummary, top []analysis.CountrySeries) []analysis.CountrySeries {
	exportYears, exportValues := analysis.AnnualTotals(summaries, func(s analysis.TradeSummary) float64 {
		return s.TotalExport
	})
	importYears, importValues := analysis.AnnualTotals(summaries, func(s analysis.TradeSummary) float64 {
		return s.TotalImport
	})
	series := []analysis.CountrySeries{
		{Country: "Aggregate Exports", Years: exportYears, Values: exportValues},
		{Country: "Aggregate Imports", Years: importYears, Values: importValues},
	}
	return append(series, top...)
}

// runForecasts fits one forecast per series. A series too short to model
// still appears in the output, flagged as unavailable.
func runForecasts(log *zap.Logger, top []analysis.CountrySeries, horizon int) []report.ForecastResult {
	forecaster := analysis.NewForecaster(log, horizon)
	results := make([]report.ForecastResult, 0, len(top))
	for _, s := range top {
		fc, err := forecaster.Forecast(s.Country, s.Values)
		if err != nil {
			log.Warn("Forecast unavailable", zap.String("country", s.Country), zap.Error(err))
			results = append(results, report.ForecastResult{Series: s})
			continue
		}
		results = append(results, report.ForecastResult{Series: s, Forecast: fc})
	}
	return results
}
