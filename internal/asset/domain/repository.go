package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, asset *Asset) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Asset, error)

	// UpdateServicePeriod sets both boundaries of the paid window. Used by
	// activation settlement.
	UpdateServicePeriod(ctx context.Context, db *gorm.DB, id snowflake.ID, start, end time.Time) error

	// UpdateServiceEnd moves only the paid-through time. Used by renewal.
	UpdateServiceEnd(ctx context.Context, db *gorm.DB, id snowflake.ID, end time.Time) error

	// BindFirstTime claims a never-activated asset for a user and opens its
	// first service window.
	BindFirstTime(ctx context.Context, db *gorm.DB, id, userID snowflake.ID, start, end, boundAt time.Time) error

	// Rebind moves an already-activated asset to a new owner without touching
	// the paid-through time.
	Rebind(ctx context.Context, db *gorm.DB, id, userID snowflake.ID, start, boundAt time.Time) error
}
