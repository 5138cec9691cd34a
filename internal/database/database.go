package database

import (
	"errors"
	"fmt"

	"trade-analytics-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrValidation labels data errors: missing columns, unresolvable country
// references. Callers wrap it with the offending table and id.
var ErrValidation = errors.New("data validation failed")

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all fact and reference tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Country{},
		&models.TradeRecord{},
		&models.EconomicIndicator{},
		&models.Tariff{},
		&models.Sanction{},
		&models.EnvironmentalMetric{},
		&models.RiskScore{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying store connection. Safe to defer: it is the
// single exit path for the run's one connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying connection: %w", err)
	}
	return sqlDB.Close()
}

// TradeRow is a trade fact joined to its reporter and partner countries.
type TradeRow struct {
	Year       int
	ReporterID uint
	Reporter   string
	PartnerID  uint
	Partner    string
	Flow       string
	ValueUSD   float64
}

// IndicatorRow is an economic indicator joined to its country.
type IndicatorRow struct {
	CountryID uint
	Country   string
	Year      int
	Name      string
	Value     float64
}

// EnvironmentalRow is an environmental metric joined to its country.
type EnvironmentalRow struct {
	CountryID            uint
	Country              string
	Year                 int
	CarbonIntensity      float64
	CarbonFootprint      float64
	GreenTradeShare      float64
	CircularEconomyScore float64
}

// LoadTradeRows reads all trade facts in [startYear, endYear] with country
// names resolved. A partner id of zero means "World".
func LoadTradeRows(db *gorm.DB, startYear, endYear int) ([]TradeRow, error) {
	var rows []TradeRow
	err := db.Table("trade_data td").
		Select(`td.year, td.reporter_country_id AS reporter_id, c1.name AS reporter,
			td.partner_country_id AS partner_id, COALESCE(c2.name, 'World') AS partner,
			td.flow, td.value_usd`).
		Joins("LEFT JOIN countries c1 ON td.reporter_country_id = c1.id").
		Joins("LEFT JOIN countries c2 ON td.partner_country_id = c2.id").
		Where("td.year BETWEEN ? AND ? AND td.deleted_at IS NULL", startYear, endYear).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trade rows: %w", err)
	}
	return rows, nil
}

// LoadIndicatorRows reads all economic indicators in [startYear, endYear]
// with country names resolved. Indicator names are opaque keys.
func LoadIndicatorRows(db *gorm.DB, startYear, endYear int) ([]IndicatorRow, error) {
	var rows []IndicatorRow
	err := db.Table("economic_indicators ei").
		Select(`ei.country_id, c.name AS country, ei.year,
			ei.indicator_name AS name, ei.indicator_value AS value`).
		Joins("LEFT JOIN countries c ON ei.country_id = c.id").
		Where("ei.year BETWEEN ? AND ? AND ei.deleted_at IS NULL", startYear, endYear).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load indicator rows: %w", err)
	}
	return rows, nil
}

// LoadLatestEnvironmentalRows reads the most recent year of environmental
// metrics per country.
func LoadLatestEnvironmentalRows(db *gorm.DB) ([]EnvironmentalRow, error) {
	var rows []EnvironmentalRow
	err := db.Table("environmental_metrics em").
		Select(`em.country_id, c.name AS country, em.year,
			em.carbon_intensity, em.carbon_footprint,
			em.green_trade_share, em.circular_economy_score`).
		Joins("LEFT JOIN countries c ON em.country_id = c.id").
		Where(`em.deleted_at IS NULL AND em.year = (
			SELECT MAX(year) FROM environmental_metrics e2
			WHERE e2.country_id = em.country_id AND e2.deleted_at IS NULL)`).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load environmental rows: %w", err)
	}
	return rows, nil
}

// CountActiveSanctions returns the number of sanctions with active status.
func CountActiveSanctions(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&models.Sanction{}).
		Where("status = ?", models.SanctionActive).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count sanctions: %w", err)
	}
	return n, nil
}

// ValidateReferences checks that every fact row resolves to an existing
// country. A dangling id is a labeled validation failure, never coerced.
func ValidateReferences(db *gorm.DB) error {
	type dangling struct {
		ID        uint
		CountryID uint
	}

	checks := []struct {
		table  string
		column string
	}{
		{"trade_data", "reporter_country_id"},
		{"trade_data", "partner_country_id"},
		{"economic_indicators", "country_id"},
		{"tariffs", "country_id"},
		{"sanctions", "sanctioning_country_id"},
		{"sanctions", "target_country_id"},
		{"environmental_metrics", "country_id"},
	}

	for _, check := range checks {
		var rows []dangling
		// Partner id 0 means "World" and is not a reference.
		query := fmt.Sprintf(`SELECT t.id, t.%s AS country_id FROM %s t
			LEFT JOIN countries c ON t.%s = c.id
			WHERE t.%s != 0 AND c.id IS NULL AND t.deleted_at IS NULL
			LIMIT 5`,
			check.column, check.table, check.column, check.column)
		if err := db.Raw(query).Scan(&rows).Error; err != nil {
			return fmt.Errorf("failed to validate %s.%s: %w", check.table, check.column, err)
		}
		if len(rows) > 0 {
			return fmt.Errorf("%w: %s.%s=%d on row %d does not resolve to a country",
				ErrValidation, check.table, check.column, rows[0].CountryID, rows[0].ID)
		}
	}

	return nil
}
