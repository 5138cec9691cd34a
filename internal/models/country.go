package models

import "gorm.io/gorm"

// Country is reference data created at load time. All fact tables
// reference it by primary key.
type Country struct {
	gorm.Model
	Code        string  `gorm:"uniqueIndex;not null" json:"code"` // ISO3
	Name        string  `gorm:"not null" json:"name"`
	Region      string  `json:"region"`
	IncomeGroup string  `json:"income_group"`
	GDP         float64 `json:"gdp"`        // millions USD
	Population  int64   `json:"population"`
}
