package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/period"
)

// DevicePackage is a billing plan scoped to a merchant, or platform-wide
// when MerchantID is nil.
type DevicePackage struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	MerchantID *snowflake.ID `json:"merchant_id" gorm:"index"`
	Name       string        `json:"name" gorm:"type:varchar(128);not null"`

	// IsRelatedOpen marks packages that activate immediately at bind time
	// instead of waiting for a separate recharge.
	IsRelatedOpen bool `json:"is_related_open" gorm:"not null;default:false"`

	Models             []PackageModel      `json:"models" gorm:"foreignKey:PackageID"`
	BindRule           *BindRule           `json:"bind_rule" gorm:"foreignKey:PackageID"`
	RechargeRules      []RechargeRule      `json:"recharge_rules" gorm:"foreignKey:PackageID"`
	ProfitSharingRules []ProfitSharingRule `json:"profit_sharing_rules" gorm:"foreignKey:PackageID"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (DevicePackage) TableName() string { return "device_packages" }

// PackageModel links a package to one compatible device model.
type PackageModel struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	PackageID snowflake.ID `json:"package_id" gorm:"not null;index"`
	ModelID   snowflake.ID `json:"model_id" gorm:"not null;index"`
}

func (PackageModel) TableName() string { return "device_package_models" }

// BindRule describes the opening duration for packages that activate at bind
// time. At most one per package.
type BindRule struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	PackageID snowflake.ID `json:"package_id" gorm:"not null;uniqueIndex"`
	Duration  int          `json:"duration" gorm:"not null"`
	TimeUnit  period.Unit  `json:"time_unit" gorm:"type:varchar(16);not null"`
}

func (BindRule) TableName() string { return "device_package_bind_rules" }

// RechargeRule is one purchasable duration. Position preserves the
// merchant-configured ordering.
type RechargeRule struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	PackageID     snowflake.ID `json:"package_id" gorm:"not null;index"`
	Position      int          `json:"position" gorm:"not null"`
	Duration      int          `json:"duration" gorm:"not null"`
	TimeUnit      period.Unit  `json:"time_unit" gorm:"type:varchar(16);not null"`
	PriceAmount   int64        `json:"price_amount" gorm:"not null"`
	IsOpeningRule bool         `json:"is_opening_rule" gorm:"not null;default:false"`
}

func (RechargeRule) TableName() string { return "device_package_recharge_rules" }

// ProfitSharingRule describes how a package's revenue is split.
type ProfitSharingRule struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	PackageID  snowflake.ID `json:"package_id" gorm:"not null;index"`
	ReceiverID snowflake.ID `json:"receiver_id" gorm:"not null"`
	RatioBps   int          `json:"ratio_bps" gorm:"not null"`
}

func (ProfitSharingRule) TableName() string { return "device_package_profit_sharing_rules" }
