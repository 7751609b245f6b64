package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	packagedomain "github.com/orbitlinklabs/orbitlink/internal/devicepackage/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() packagedomain.Repository {
	return &repo{}
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, merchantID snowflake.ID) ([]*packagedomain.DevicePackage, error) {
	var packages []*packagedomain.DevicePackage
	err := db.WithContext(ctx).
		Preload("Models").
		Preload("BindRule").
		Preload("RechargeRules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ProfitSharingRules").
		Where("merchant_id = ? OR merchant_id IS NULL", merchantID).
		Order("merchant_id IS NULL ASC, created_at ASC").
		Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*packagedomain.DevicePackage, error) {
	var p packagedomain.DevicePackage
	err := db.WithContext(ctx).
		Preload("Models").
		Preload("BindRule").
		Preload("RechargeRules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ProfitSharingRules").
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
