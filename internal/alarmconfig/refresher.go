package alarmconfig

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/orbitlinklabs/orbitlink/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AlarmSnapshot is the denormalized per-asset view of which alarm types have
// at least one delivery channel enabled. Alarm evaluation reads this row
// instead of scanning notification configs.
type AlarmSnapshot struct {
	AssetID      snowflake.ID   `json:"asset_id" gorm:"primaryKey"`
	EnabledTypes datatypes.JSON `json:"enabled_types" gorm:"not null"`
	RefreshedAt  time.Time      `json:"refreshed_at" gorm:"not null"`
}

func (AlarmSnapshot) TableName() string { return "asset_alarm_snapshots" }

type Refresher interface {
	Refresh(ctx context.Context, assetID snowflake.ID) error
}

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	NotificationRepo notificationdomain.Repository
}

type refresher struct {
	db               *gorm.DB
	log              *zap.Logger
	notificationRepo notificationdomain.Repository
}

func NewRefresher(p Params) Refresher {
	return &refresher{
		db:               p.DB,
		log:              p.Log.Named("alarmconfig"),
		notificationRepo: p.NotificationRepo,
	}
}

func (r *refresher) Refresh(ctx context.Context, assetID snowflake.ID) error {
	configs, err := r.notificationRepo.ListByAssetID(ctx, r.db, assetID)
	if err != nil {
		return err
	}

	enabled := make([]notificationdomain.AlarmType, 0, len(configs))
	for _, cfg := range configs {
		if cfg.AppEnabled || cfg.SMSEnabled || cfg.EmailEnabled {
			enabled = append(enabled, cfg.AlarmType)
		}
	}

	payload, err := json.Marshal(enabled)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM asset_alarm_snapshots WHERE asset_id = ?`, assetID).Error; err != nil {
			return err
		}
		return tx.Exec(
			`INSERT INTO asset_alarm_snapshots (asset_id, enabled_types, refreshed_at) VALUES (?, ?, ?)`,
			assetID,
			payload,
			now,
		).Error
	})
}

var Module = fx.Module("alarmconfig",
	fx.Provide(NewRefresher),
)
