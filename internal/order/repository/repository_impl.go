package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/orbitlinklabs/orbitlink/internal/order/domain"
	"gorm.io/gorm"
)

const orderColumns = `id, order_number, external_order_number, refund_order_number,
	asset_id, merchant_id, target,
	paid_amount, paid_at, processed_at,
	refund_apply_at, refunded_amount, refunded_at,
	period_duration, period_unit, gift_duration, gift_unit,
	profit_sharing, created_at, updated_at`

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, o *orderdomain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO asset_service_period_orders (
			id, order_number, external_order_number, refund_order_number,
			asset_id, merchant_id, target,
			paid_amount, paid_at, processed_at,
			refund_apply_at, refunded_amount, refunded_at,
			period_duration, period_unit, gift_duration, gift_unit,
			profit_sharing, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.OrderNumber,
		o.ExternalOrderNumber,
		o.RefundOrderNumber,
		o.AssetID,
		o.MerchantID,
		o.Target,
		o.PaidAmount,
		o.PaidAt,
		o.ProcessedAt,
		o.RefundApplyAt,
		o.RefundedAmount,
		o.RefundedAt,
		o.PeriodDuration,
		o.PeriodUnit,
		o.GiftDuration,
		o.GiftUnit,
		o.ProfitSharing,
		o.CreatedAt,
		o.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	return r.findOne(ctx, db, `id = ?`, id)
}

func (r *repo) FindByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*orderdomain.Order, error) {
	return r.findOne(ctx, db, `order_number = ?`, orderNumber)
}

func (r *repo) FindByRefundOrderNumber(ctx context.Context, db *gorm.DB, refundOrderNumber string) (*orderdomain.Order, error) {
	return r.findOne(ctx, db, `refund_order_number = ?`, refundOrderNumber)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, value any) (*orderdomain.Order, error) {
	var o orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM asset_service_period_orders WHERE `+cond+` LIMIT 1`,
		value,
	).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, paidAt time.Time, externalOrderNumber string, processedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE asset_service_period_orders
		 SET paid_amount = ?, paid_at = ?, external_order_number = ?, processed_at = ?, updated_at = ?
		 WHERE id = ? AND processed_at IS NULL`,
		amount,
		paidAt,
		externalOrderNumber,
		processedAt,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) MarkRefunded(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, refundedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE asset_service_period_orders
		 SET refunded_amount = ?, refunded_at = ?, updated_at = ?
		 WHERE id = ? AND refunded_at IS NULL`,
		amount,
		refundedAt,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
