package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ListCandidates returns the merchant's packages followed by platform-wide
	// ones, each group in its configured order, with rules and model sets
	// loaded.
	ListCandidates(ctx context.Context, db *gorm.DB, merchantID snowflake.ID) ([]*DevicePackage, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DevicePackage, error)
}
