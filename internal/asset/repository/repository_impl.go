package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/orbitlinklabs/orbitlink/internal/asset/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() assetdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *assetdomain.Asset) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO assets (
			id, user_id, merchant_id, tracker_id,
			service_start_at, service_end_at, tracker_bound_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.UserID,
		a.MerchantID,
		a.TrackerID,
		a.ServiceStartAt,
		a.ServiceEndAt,
		a.TrackerBoundAt,
		a.CreatedAt,
		a.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*assetdomain.Asset, error) {
	var a assetdomain.Asset
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, merchant_id, tracker_id,
		        service_start_at, service_end_at, tracker_bound_at,
		        created_at, updated_at
		 FROM assets WHERE id = ? LIMIT 1`,
		id,
	).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) UpdateServicePeriod(ctx context.Context, db *gorm.DB, id snowflake.ID, start, end time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE assets
		 SET service_start_at = ?, service_end_at = ?, updated_at = ?
		 WHERE id = ?`,
		start,
		end,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) UpdateServiceEnd(ctx context.Context, db *gorm.DB, id snowflake.ID, end time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE assets
		 SET service_end_at = ?, updated_at = ?
		 WHERE id = ?`,
		end,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) BindFirstTime(ctx context.Context, db *gorm.DB, id, userID snowflake.ID, start, end, boundAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE assets
		 SET user_id = ?, service_start_at = ?, service_end_at = ?, tracker_bound_at = ?, updated_at = ?
		 WHERE id = ?`,
		userID,
		start,
		end,
		boundAt,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) Rebind(ctx context.Context, db *gorm.DB, id, userID snowflake.ID, start, boundAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE assets
		 SET user_id = ?, service_start_at = ?, tracker_bound_at = ?, updated_at = ?
		 WHERE id = ?`,
		userID,
		start,
		boundAt,
		time.Now().UTC(),
		id,
	).Error
}
