package models

import (
	"time"

	"gorm.io/gorm"
)

// Sanction statuses.
const (
	SanctionActive    = "active"
	SanctionSuspended = "suspended"
	SanctionLifted    = "lifted"
)

// Sanction is a measure imposed by SanctioningCountryID on TargetCountryID.
type Sanction struct {
	gorm.Model
	SanctioningCountryID uint       `gorm:"not null" json:"sanctioning_country_id"`
	TargetCountryID      uint       `gorm:"not null;index" json:"target_country_id"`
	SanctionType         string     `json:"sanction_type"` // trade, financial, travel, arms, other
	Description          string     `json:"description"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	Status               string     `gorm:"index" json:"status"`
	Source               string     `json:"source"`
}
