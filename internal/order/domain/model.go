package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/period"
)

type OrderTarget string

const (
	OrderTargetActivate OrderTarget = "ACTIVATE"
	OrderTargetRenewal  OrderTarget = "RENEWAL"
)

// OrderState is derived from the write-once timestamp fields, never stored.
type OrderState string

const (
	OrderStateUnpaid        OrderState = "UNPAID"
	OrderStatePaid          OrderState = "PAID"
	OrderStateRefundPending OrderState = "REFUND_PENDING"
	OrderStateRefunded      OrderState = "REFUNDED"
)

// Order is a billing transaction against one asset. ProcessedAt and
// RefundedAt are write-once guards: settlement only proceeds when its
// conditional update observes the guard still unset.
type Order struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderNumber string       `json:"order_number" gorm:"type:varchar(64);not null;uniqueIndex"`

	// ExternalOrderNumber is the payment gateway's transaction id, recorded
	// at pay-success time.
	ExternalOrderNumber *string `json:"external_order_number" gorm:"type:varchar(64)"`
	RefundOrderNumber   *string `json:"refund_order_number" gorm:"type:varchar(64);index"`

	AssetID    snowflake.ID `json:"asset_id" gorm:"not null;index"`
	MerchantID snowflake.ID `json:"merchant_id" gorm:"not null;index"`
	Target     OrderTarget  `json:"target" gorm:"type:varchar(16);not null"`

	PaidAmount  *int64     `json:"paid_amount"`
	PaidAt      *time.Time `json:"paid_at"`
	ProcessedAt *time.Time `json:"processed_at"`

	RefundApplyAt  *time.Time `json:"refund_apply_at"`
	RefundedAmount *int64     `json:"refunded_amount"`
	RefundedAt     *time.Time `json:"refunded_at"`

	PeriodDuration int         `json:"period_duration" gorm:"not null"`
	PeriodUnit     period.Unit `json:"period_unit" gorm:"type:varchar(16);not null"`
	GiftDuration   *int        `json:"gift_duration"`
	GiftUnit       *period.Unit `json:"gift_unit" gorm:"type:varchar(16)"`

	ProfitSharing bool `json:"profit_sharing" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Order) TableName() string { return "asset_service_period_orders" }

// State derives the lifecycle state. The checks are ordered: unpaid first,
// then refunded, then refund-pending, since RefundedAt gates the terminal
// state regardless of RefundApplyAt.
func (o *Order) State() OrderState {
	switch {
	case o.PaidAt == nil:
		return OrderStateUnpaid
	case o.RefundedAt != nil:
		return OrderStateRefunded
	case o.RefundApplyAt != nil:
		return OrderStateRefundPending
	default:
		return OrderStatePaid
	}
}

// PeriodRule returns the paid service-period rule.
func (o *Order) PeriodRule() period.Rule {
	return period.Rule{Duration: o.PeriodDuration, Unit: o.PeriodUnit}
}

// GiftRule returns the bonus-duration rule, nil when the order carries none.
func (o *Order) GiftRule() *period.Rule {
	if o.GiftDuration == nil || o.GiftUnit == nil {
		return nil
	}
	return &period.Rule{Duration: *o.GiftDuration, Unit: *o.GiftUnit}
}
