package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/orbitlinklabs/orbitlink/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() coupondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *coupondomain.Coupon) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO coupons (
			id, code, activity_tag, order_id, used_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Code,
		c.ActivityTag,
		c.OrderID,
		c.UsedAt,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindUnusedByCode(ctx context.Context, db *gorm.DB, code, activityTag string) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, activity_tag, order_id, used_at, created_at, updated_at
		 FROM coupons
		 WHERE code = ? AND activity_tag = ? AND used_at IS NULL
		 LIMIT 1`,
		code,
		activityTag,
	).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) MarkUsed(ctx context.Context, db *gorm.DB, id, orderID snowflake.ID, usedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET used_at = ?, order_id = ?, updated_at = ?
		 WHERE id = ? AND used_at IS NULL`,
		usedAt,
		orderID,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
