package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/orbitlinklabs/orbitlink/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() notificationdomain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, configs []notificationdomain.NotificationConfig) error {
	for i := range configs {
		c := configs[i]
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO notification_configs (
				id, asset_id, alarm_type,
				app_enabled, sms_enabled, email_enabled,
				window_start, window_end,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID,
			c.AssetID,
			c.AlarmType,
			c.AppEnabled,
			c.SMSEnabled,
			c.EmailEnabled,
			c.WindowStart,
			c.WindowEnd,
			c.CreatedAt,
			c.UpdatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) ListByAssetID(ctx context.Context, db *gorm.DB, assetID snowflake.ID) ([]notificationdomain.NotificationConfig, error) {
	var configs []notificationdomain.NotificationConfig
	err := db.WithContext(ctx).Raw(
		`SELECT id, asset_id, alarm_type,
		        app_enabled, sms_enabled, email_enabled,
		        window_start, window_end,
		        created_at, updated_at
		 FROM notification_configs
		 WHERE asset_id = ?
		 ORDER BY alarm_type ASC`,
		assetID,
	).Scan(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}
