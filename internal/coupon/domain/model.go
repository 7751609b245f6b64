package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RenewalActivityTag identifies the promotional activity whose coupons may
// be consumed during renewal settlement.
const RenewalActivityTag = "renewal-promotion"

// Coupon is a promotional voucher. UsedAt is write-once.
type Coupon struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	Code        string        `json:"code" gorm:"type:varchar(64);not null;uniqueIndex"`
	ActivityTag string        `json:"activity_tag" gorm:"type:varchar(64);not null;index"`
	OrderID     *snowflake.ID `json:"order_id" gorm:"index"`
	UsedAt      *time.Time    `json:"used_at"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Coupon) TableName() string { return "coupons" }
