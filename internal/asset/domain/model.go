package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Asset is the billable entity wrapping exactly one tracker. ServiceEndAt is
// nil until the asset has been activated at least once.
type Asset struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	UserID     *snowflake.ID `json:"user_id" gorm:"index"`
	MerchantID snowflake.ID  `json:"merchant_id" gorm:"not null;index"`
	TrackerID  snowflake.ID  `json:"tracker_id" gorm:"not null;uniqueIndex"`

	ServiceStartAt *time.Time `json:"service_start_at"`
	ServiceEndAt   *time.Time `json:"service_end_at"`
	TrackerBoundAt *time.Time `json:"tracker_bound_at"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Asset) TableName() string { return "assets" }

// Activated reports whether the asset has ever had a paid service period.
func (a *Asset) Activated() bool {
	return a.ServiceEndAt != nil
}
