package models

import "gorm.io/gorm"

// EconomicIndicator is one observation of a named indicator for a
// (country, year). Indicator names are opaque keys supplied upstream;
// nothing here assumes units beyond "numeric value".
type EconomicIndicator struct {
	gorm.Model
	CountryID      uint    `gorm:"not null;uniqueIndex:idx_indicator_fact" json:"country_id"`
	Year           int     `gorm:"not null;index;uniqueIndex:idx_indicator_fact" json:"year"`
	IndicatorName  string  `gorm:"not null;uniqueIndex:idx_indicator_fact" json:"indicator_name"`
	IndicatorValue float64 `json:"indicator_value"`
	Unit           string  `json:"unit"`
	Source         string  `json:"source"`
}
