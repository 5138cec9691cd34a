package models

import (
	"time"

	"gorm.io/gorm"
)

// Risk types persisted to the risk_scores table.
const (
	RiskTypeTrade     = "trade_risk"
	RiskTypeComposite = "composite_risk"
)

// RiskScore is a persisted assessment output, one row per
// (country, risk type, run).
type RiskScore struct {
	gorm.Model
	CountryID  uint      `gorm:"not null;index:idx_risk_country_type" json:"country_id"`
	RiskType   string    `gorm:"not null;index:idx_risk_country_type" json:"risk_type"`
	Score      float64   `json:"score"` // 0-100
	AssessedAt time.Time `json:"assessed_at"`
}
