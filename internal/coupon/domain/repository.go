package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	FindUnusedByCode(ctx context.Context, db *gorm.DB, code, activityTag string) (*Coupon, error)

	// MarkUsed consumes the coupon and links it to an order. The update is
	// conditioned on used_at still being null; it reports whether this caller
	// won the write.
	MarkUsed(ctx context.Context, db *gorm.DB, id, orderID snowflake.ID, usedAt time.Time) (bool, error)
}
