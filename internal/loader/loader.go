package loader

import (
	"fmt"
	"hash/fnv"
	"time"

	"trade-analytics-go/internal/database"
	"trade-analytics-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Loader seeds the store with reference countries and deterministic fact
// rows for the configured year range. Seeding is idempotent: every row is
// keyed by its natural key, so a second run adds nothing.
type Loader struct {
	db        *gorm.DB
	logger    *zap.Logger
	startYear int
	endYear   int
}

// NewLoader creates a loader for the given year range.
func NewLoader(db *gorm.DB, logger *zap.Logger, startYear, endYear int) *Loader {
	return &Loader{db: db, logger: logger, startYear: startYear, endYear: endYear}
}

// countrySeed is one reference country with its base annual import/export
// totals in millions USD.
type countrySeed struct {
	code        string
	name        string
	region      string
	incomeGroup string
	gdp         float64
	population  int64
	baseImports float64
	baseExports float64
}

var countrySeeds = []countrySeed{
	{"USA", "United States", "North America", "High income", 25462700, 331002651, 25000000, 30000000},
	{"CHN", "China", "Asia", "Upper middle income", 17963170, 1439323776, 28000000, 35000000},
	{"DEU", "Germany", "Europe", "High income", 4072191, 83190556, 15000000, 18000000},
	{"JPN", "Japan", "Asia", "High income", 4231141, 125836021, 8000000, 10000000},
	{"GBR", "United Kingdom", "Europe", "High income", 3070667, 67215293, 7000000, 8000000},
	{"CAN", "Canada", "North America", "High income", 2139840, 37742154, 5000000, 6000000},
	{"FRA", "France", "Europe", "High income", 2782905, 65273511, 6000000, 7000000},
	{"ITA", "Italy", "Europe", "High income", 2010430, 60461826, 5000000, 6000000},
	{"BRA", "Brazil", "South America", "Upper middle income", 1920095, 212559417, 3000000, 4000000},
	{"IND", "India", "Asia", "Lower middle income", 3385090, 1380004385, 4000000, 5000000},
}

// Canonical indicator names. Downstream consumers match on these strings,
// so they must stay in sync with the stored rows.
const (
	IndicatorGDP          = "GDP (current US$)"
	IndicatorGDPGrowth    = "GDP growth (annual %)"
	IndicatorUnemployment = "Unemployment Rate (%)"
)

// indicatorSeed is one opaque indicator key with base value and annual drift.
type indicatorSeed struct {
	name   string
	base   float64
	growth float64
}

var indicatorSeeds = []indicatorSeed{
	{IndicatorGDP, 2000000, 0.03},
	{IndicatorGDPGrowth, 2.5, 0.1},
	{IndicatorUnemployment, 5.0, -0.2},
	{"Inflation Rate (%)", 2.0, 0.1},
	{"Exports (% of GDP)", 25.0, 0.5},
	{"Imports (% of GDP)", 22.0, 0.3},
	{"Trade Balance (% of GDP)", 3.0, 0.2},
}

// variation returns a deterministic pseudo-random factor in [-0.05, 0.05)
// keyed on the given string, so repeated seeding produces identical rows.
func variation(key string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return float64(int(h.Sum32()%100)-50) / 1000
}

// Seed populates every table. Countries first, then facts; fact rows only
// reference countries inserted in the same call, so referential integrity
// holds by construction and is re-checked afterwards.
func (l *Loader) Seed() error {
	l.logger.Info("Seeding store",
		zap.Int("start_year", l.startYear),
		zap.Int("end_year", l.endYear),
	)

	ids, err := l.seedCountries()
	if err != nil {
		return err
	}
	if err := l.seedTradeData(ids); err != nil {
		return err
	}
	if err := l.seedIndicators(ids); err != nil {
		return err
	}
	if err := l.seedEnvironmental(ids); err != nil {
		return err
	}
	if err := l.seedTariffs(ids); err != nil {
		return err
	}
	if err := l.seedSanctions(ids); err != nil {
		return err
	}

	if err := database.ValidateReferences(l.db); err != nil {
		return fmt.Errorf("seeded data failed validation: %w", err)
	}

	l.logger.Info("Seeding complete")
	return nil
}

func (l *Loader) seedCountries() (map[string]uint, error) {
	ids := make(map[string]uint, len(countrySeeds))
	for _, seed := range countrySeeds {
		country := models.Country{
			Code:        seed.code,
			Name:        seed.name,
			Region:      seed.region,
			IncomeGroup: seed.incomeGroup,
			GDP:         seed.gdp,
			Population:  seed.population,
		}
		if err := l.db.FirstOrCreate(&country, models.Country{Code: seed.code}).Error; err != nil {
			return nil, fmt.Errorf("failed to seed country %s: %w", seed.code, err)
		}
		ids[seed.code] = country.ID
	}
	l.logger.Info("Seeded countries", zap.Int("count", len(ids)))
	return ids, nil
}

func (l *Loader) seedTradeData(ids map[string]uint) error {
	count := 0
	for year := l.startYear; year <= l.endYear; year++ {
		for _, reporter := range countrySeeds {
			growth := float64(year - l.startYear)
			importValue := reporter.baseImports * (1 + growth*0.05 + variation(reporter.code+fmt.Sprint(year)))
			exportValue := reporter.baseExports * (1 + growth*0.06 + variation(reporter.code+fmt.Sprint(year)))

			// Totals against the World (partner id 0).
			totals := []struct {
				flow  string
				value float64
			}{
				{models.FlowImport, importValue},
				{models.FlowExport, exportValue},
			}
			for _, total := range totals {
				if err := l.upsertTradeRecord(year, ids[reporter.code], 0, total.flow, total.value); err != nil {
					return err
				}
				count++
			}

			// Bilateral rows against every other reference country.
			for _, partner := range countrySeeds {
				if partner.code == reporter.code {
					continue
				}
				factor := 0.1 + float64(fnvSum(reporter.code+partner.code+fmt.Sprint(year))%50)/1000
				if err := l.upsertTradeRecord(year, ids[reporter.code], ids[partner.code], models.FlowImport, importValue*factor); err != nil {
					return err
				}
				if err := l.upsertTradeRecord(year, ids[reporter.code], ids[partner.code], models.FlowExport, exportValue*factor); err != nil {
					return err
				}
				count += 2
			}
		}
	}
	l.logger.Info("Seeded trade records", zap.Int("count", count))
	return nil
}

func fnvSum(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

func (l *Loader) upsertTradeRecord(year int, reporterID, partnerID uint, flow string, value float64) error {
	record := models.TradeRecord{
		Year:                 year,
		ReporterCountryID:    reporterID,
		PartnerCountryID:     partnerID,
		CommodityCode:        "TOTAL",
		CommodityDescription: "Total Trade",
		Flow:                 flow,
		ValueUSD:             value,
		Source:               "Sample Data",
	}
	// Map conditions: a struct condition would drop the zero-valued
	// partner id of World-total rows and match the wrong fact.
	key := map[string]interface{}{
		"year":                year,
		"reporter_country_id": reporterID,
		"partner_country_id":  partnerID,
		"commodity_code":      "TOTAL",
		"flow":                flow,
	}
	if err := l.db.FirstOrCreate(&record, key).Error; err != nil {
		return fmt.Errorf("failed to seed trade record: %w", err)
	}
	return nil
}

func (l *Loader) seedIndicators(ids map[string]uint) error {
	count := 0
	for year := l.startYear; year <= l.endYear; year++ {
		for _, country := range countrySeeds {
			for _, ind := range indicatorSeeds {
				factor := 1 + float64(year-l.startYear)*ind.growth + variation(country.code+ind.name+fmt.Sprint(year))
				key := models.EconomicIndicator{
					CountryID:     ids[country.code],
					Year:          year,
					IndicatorName: ind.name,
				}
				row := key
				row.IndicatorValue = ind.base * factor
				row.Source = "Sample Data"
				if err := l.db.FirstOrCreate(&row, key).Error; err != nil {
					return fmt.Errorf("failed to seed indicator %q for %s: %w", ind.name, country.code, err)
				}
				count++
			}
		}
	}
	l.logger.Info("Seeded economic indicators", zap.Int("count", count))
	return nil
}

func (l *Loader) seedEnvironmental(ids map[string]uint) error {
	count := 0
	for year := l.startYear; year <= l.endYear; year++ {
		for _, country := range countrySeeds {
			metric := environmentalProfile(country.code, year, l.startYear)
			key := models.EnvironmentalMetric{
				CountryID: ids[country.code],
				Year:      year,
			}
			metric.CountryID = ids[country.code]
			metric.Year = year
			metric.Source = "Sample Environmental Data"
			if err := l.db.FirstOrCreate(&metric, key).Error; err != nil {
				return fmt.Errorf("failed to seed environmental metrics for %s: %w", country.code, err)
			}
			count++
		}
	}
	l.logger.Info("Seeded environmental metrics", zap.Int("count", count))
	return nil
}

// environmentalProfile builds a stylized per-country profile: China
// carbon-heavy, Germany the green leader, the US in between, everyone
// else on a common baseline.
func environmentalProfile(code string, year, startYear int) models.EnvironmentalMetric {
	jitter := float64(fnvSum(code+fmt.Sprint(year)) % 100)
	progress := float64(year - startYear)

	switch code {
	case "CHN":
		return models.EnvironmentalMetric{
			CarbonIntensity:      0.8 + jitter/1000,
			GreenTradeShare:      15.0 + progress*2.0,
			TransportEmissions:   45.0 + float64(fnvSum(code+fmt.Sprint(year))%50)/10,
			CircularEconomyScore: 35.0 + progress*3.0,
			RenewableEnergyTrade: 25.0 + progress*5.0,
			CarbonFootprint:      120.0 + jitter/10,
		}
	case "DEU":
		return models.EnvironmentalMetric{
			CarbonIntensity:      0.3 + jitter/1000,
			GreenTradeShare:      45.0 + progress*3.0,
			TransportEmissions:   25.0 + float64(fnvSum(code+fmt.Sprint(year))%30)/10,
			CircularEconomyScore: 75.0 + progress*2.0,
			RenewableEnergyTrade: 85.0 + progress*3.0,
			CarbonFootprint:      45.0 + float64(fnvSum(code+fmt.Sprint(year))%50)/10,
		}
	case "USA":
		return models.EnvironmentalMetric{
			CarbonIntensity:      0.5 + jitter/1000,
			GreenTradeShare:      25.0 + progress*2.5,
			TransportEmissions:   35.0 + float64(fnvSum(code+fmt.Sprint(year))%40)/10,
			CircularEconomyScore: 50.0 + progress*2.5,
			RenewableEnergyTrade: 40.0 + progress*4.0,
			CarbonFootprint:      65.0 + float64(fnvSum(code+fmt.Sprint(year))%60)/10,
		}
	default:
		return models.EnvironmentalMetric{
			CarbonIntensity:      0.4 + jitter/1000,
			GreenTradeShare:      20.0 + progress*2.0 + jitter/10,
			TransportEmissions:   30.0 + float64(fnvSum(code+fmt.Sprint(year))%40)/10,
			CircularEconomyScore: 40.0 + progress*2.0 + jitter/10,
			RenewableEnergyTrade: 30.0 + progress*3.0 + jitter/10,
			CarbonFootprint:      55.0 + float64(fnvSum(code+fmt.Sprint(year))%50)/10,
		}
	}
}

func (l *Loader) seedTariffs(ids map[string]uint) error {
	effective := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tariffs := []models.Tariff{
		{
			CountryID:        ids["USA"],
			PartnerCountryID: ids["CHN"],
			CommodityCode:    "0101",
			TariffRate:       2.5,
			TariffType:       models.TariffMFN,
			EffectiveDate:    effective,
			Source:           "WTO",
		},
		{
			CountryID:        ids["USA"],
			PartnerCountryID: ids["DEU"],
			CommodityCode:    "0101",
			TariffRate:       0.0,
			TariffType:       models.TariffPreferential,
			EffectiveDate:    effective,
			Source:           "WTO",
		},
	}
	for _, tariff := range tariffs {
		key := models.Tariff{
			CountryID:        tariff.CountryID,
			PartnerCountryID: tariff.PartnerCountryID,
			CommodityCode:    tariff.CommodityCode,
			TariffType:       tariff.TariffType,
		}
		row := tariff
		if err := l.db.FirstOrCreate(&row, key).Error; err != nil {
			return fmt.Errorf("failed to seed tariff: %w", err)
		}
	}
	l.logger.Info("Seeded tariffs", zap.Int("count", len(tariffs)))
	return nil
}

func (l *Loader) seedSanctions(ids map[string]uint) error {
	date := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	sanctions := []models.Sanction{
		{
			SanctioningCountryID: ids["USA"],
			TargetCountryID:      ids["CHN"],
			SanctionType:         "trade",
			Description:          "Semiconductor export controls and advanced technology restrictions",
			StartDate:            date(2022, 10, 7),
			Status:               models.SanctionActive,
			Source:               "BIS",
		},
		{
			SanctioningCountryID: ids["USA"],
			TargetCountryID:      ids["CHN"],
			SanctionType:         "financial",
			Description:          "Entity List restrictions on technology companies",
			StartDate:            date(2023, 8, 1),
			Status:               models.SanctionActive,
			Source:               "OFAC",
		},
		{
			SanctioningCountryID: ids["USA"],
			TargetCountryID:      ids["BRA"],
			SanctionType:         "trade",
			Description:          "Steel and aluminum tariff restrictions",
			StartDate:            date(2021, 1, 15),
			Status:               models.SanctionActive,
			Source:               "USTR",
		},
		{
			SanctioningCountryID: ids["USA"],
			TargetCountryID:      ids["IND"],
			SanctionType:         "arms",
			Description:          "CAATSA sanctions for missile system purchase",
			StartDate:            date(2021, 12, 14),
			Status:               models.SanctionActive,
			Source:               "CAATSA",
		},
	}
	for _, sanction := range sanctions {
		key := models.Sanction{
			SanctioningCountryID: sanction.SanctioningCountryID,
			TargetCountryID:      sanction.TargetCountryID,
			SanctionType:         sanction.SanctionType,
			Description:          sanction.Description,
		}
		row := sanction
		if err := l.db.FirstOrCreate(&row, key).Error; err != nil {
			return fmt.Errorf("failed to seed sanction: %w", err)
		}
	}
	l.logger.Info("Seeded sanctions", zap.Int("count", len(sanctions)))
	return nil
}
