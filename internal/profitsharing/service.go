package profitsharing

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/orbitlinklabs/orbitlink/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending = "PENDING"
)

// Record is one pending profit-sharing payout derived from a settled order.
// Settlement creates it best-effort; a downstream worker executes the split.
type Record struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderID    snowflake.ID `json:"order_id" gorm:"not null;uniqueIndex"`
	AssetID    snowflake.ID `json:"asset_id" gorm:"not null;index"`
	MerchantID snowflake.ID `json:"merchant_id" gorm:"not null;index"`
	Amount     int64        `json:"amount" gorm:"not null"`
	Status     string       `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
}

func (Record) TableName() string { return "profit_sharing_records" }

type Creator interface {
	CreateRecord(ctx context.Context, order *orderdomain.Order) error
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type creator struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewCreator(p Params) Creator {
	return &creator{
		db:    p.DB,
		log:   p.Log.Named("profitsharing"),
		genID: p.GenID,
	}
}

func (c *creator) CreateRecord(ctx context.Context, order *orderdomain.Order) error {
	if order == nil || order.PaidAmount == nil {
		return nil
	}
	record := Record{
		ID:         c.genID.Generate(),
		OrderID:    order.ID,
		AssetID:    order.AssetID,
		MerchantID: order.MerchantID,
		Amount:     *order.PaidAmount,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	return c.db.WithContext(ctx).Exec(
		`INSERT INTO profit_sharing_records (
			id, order_id, asset_id, merchant_id, amount, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OrderID,
		record.AssetID,
		record.MerchantID,
		record.Amount,
		record.Status,
		record.CreatedAt,
	).Error
}

var Module = fx.Module("profitsharing",
	fx.Provide(NewCreator),
)
