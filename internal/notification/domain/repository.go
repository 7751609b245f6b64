package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, configs []NotificationConfig) error
	ListByAssetID(ctx context.Context, db *gorm.DB, assetID snowflake.ID) ([]NotificationConfig, error)
}
