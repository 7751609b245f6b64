package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tracker is a physical device. It is provisioned once and only its
// asset/package linkage changes afterwards.
type Tracker struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	TrackerNumber string       `json:"tracker_number" gorm:"type:varchar(64);not null;uniqueIndex"`
	ModelID       snowflake.ID `json:"model_id" gorm:"not null;index"`
	AssetID       snowflake.ID `json:"asset_id" gorm:"not null;uniqueIndex"`

	// SilentPeriodEndAt marks the end of the free pre-activation window.
	// Before it the device is considered newly provisioned.
	SilentPeriodEndAt time.Time `json:"silent_period_end_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Tracker) TableName() string { return "trackers" }
