package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*Order, error)
	FindByRefundOrderNumber(ctx context.Context, db *gorm.DB, refundOrderNumber string) (*Order, error)

	// MarkPaid records the payment and sets the processed_at guard in one
	// conditional update. It reports false when another caller already
	// settled the order.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, paidAt time.Time, externalOrderNumber string, processedAt time.Time) (bool, error)

	// MarkRefunded sets the refunded_at guard, conditioned on it being unset.
	MarkRefunded(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, refundedAt time.Time) (bool, error)
}
