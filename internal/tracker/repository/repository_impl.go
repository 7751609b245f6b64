package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	trackerdomain "github.com/orbitlinklabs/orbitlink/internal/tracker/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() trackerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *trackerdomain.Tracker) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO trackers (
			id, tracker_number, model_id, asset_id, silent_period_end_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.TrackerNumber,
		t.ModelID,
		t.AssetID,
		t.SilentPeriodEndAt,
		t.CreatedAt,
		t.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*trackerdomain.Tracker, error) {
	var t trackerdomain.Tracker
	err := db.WithContext(ctx).Raw(
		`SELECT id, tracker_number, model_id, asset_id, silent_period_end_at, created_at, updated_at
		 FROM trackers WHERE id = ? LIMIT 1`,
		id,
	).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) FindByAssetID(ctx context.Context, db *gorm.DB, assetID snowflake.ID) (*trackerdomain.Tracker, error) {
	var t trackerdomain.Tracker
	err := db.WithContext(ctx).Raw(
		`SELECT id, tracker_number, model_id, asset_id, silent_period_end_at, created_at, updated_at
		 FROM trackers WHERE asset_id = ? LIMIT 1`,
		assetID,
	).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
