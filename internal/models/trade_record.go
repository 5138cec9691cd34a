package models

import "gorm.io/gorm"

// Trade flow directions.
const (
	FlowImport = "import"
	FlowExport = "export"
)

// TradeRecord is an append-only fact row in the trade_data table.
// (reporter, partner, year, commodity, flow) is unique.
type TradeRecord struct {
	gorm.Model
	Year                 int     `gorm:"not null;index;uniqueIndex:idx_trade_fact" json:"year"`
	ReporterCountryID    uint    `gorm:"not null;uniqueIndex:idx_trade_fact" json:"reporter_country_id"`
	PartnerCountryID     uint    `gorm:"uniqueIndex:idx_trade_fact" json:"partner_country_id"`
	CommodityCode        string  `gorm:"default:TOTAL;uniqueIndex:idx_trade_fact" json:"commodity_code"`
	CommodityDescription string  `json:"commodity_description"`
	Flow                 string  `gorm:"not null;uniqueIndex:idx_trade_fact" json:"flow"` // "import" or "export"
	ValueUSD             float64 `json:"value_usd"`
	Quantity             float64 `json:"quantity"`
	Unit                 string  `json:"unit"`
	Source               string  `json:"source"`
}

// TableName pins the legacy table name instead of gorm's pluralized default.
func (TradeRecord) TableName() string {
	return "trade_data"
}
