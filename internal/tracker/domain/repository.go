package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tracker *Tracker) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tracker, error)
	FindByAssetID(ctx context.Context, db *gorm.DB, assetID snowflake.ID) (*Tracker, error)
}
