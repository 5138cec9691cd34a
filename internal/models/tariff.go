package models

import (
	"time"

	"gorm.io/gorm"
)

// Tariff types.
const (
	TariffMFN          = "MFN"
	TariffPreferential = "preferential"
	TariffSafeguard    = "safeguard"
)

// Tariff is a rate imposed by CountryID on imports from PartnerCountryID.
type Tariff struct {
	gorm.Model
	CountryID        uint       `gorm:"not null;index:idx_tariff_countries" json:"country_id"`
	PartnerCountryID uint       `gorm:"index:idx_tariff_countries" json:"partner_country_id"`
	CommodityCode    string     `json:"commodity_code"`
	TariffRate       float64    `json:"tariff_rate"` // percent
	TariffType       string     `json:"tariff_type"`
	EffectiveDate    time.Time  `json:"effective_date"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	Source           string     `json:"source"`
}
