package models

import "gorm.io/gorm"

// EnvironmentalMetric holds the per-(country, year) environmental inputs
// of the risk engine.
type EnvironmentalMetric struct {
	gorm.Model
	CountryID            uint    `gorm:"not null;uniqueIndex:idx_env_fact" json:"country_id"`
	Year                 int     `gorm:"not null;uniqueIndex:idx_env_fact" json:"year"`
	CarbonIntensity      float64 `json:"carbon_intensity"`       // CO2 per $ of trade
	GreenTradeShare      float64 `json:"green_trade_share"`      // percent
	TransportEmissions   float64 `json:"transport_emissions"`    // million tons CO2
	CircularEconomyScore float64 `json:"circular_economy_score"` // 0-100
	RenewableEnergyTrade float64 `json:"renewable_energy_trade"` // $ millions
	CarbonFootprint      float64 `json:"carbon_footprint"`       // million tons CO2
	Source               string  `json:"source"`
}
