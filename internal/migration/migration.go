package migration

import (
	"github.com/orbitlinklabs/orbitlink/internal/alarmconfig"
	assetdomain "github.com/orbitlinklabs/orbitlink/internal/asset/domain"
	coupondomain "github.com/orbitlinklabs/orbitlink/internal/coupon/domain"
	packagedomain "github.com/orbitlinklabs/orbitlink/internal/devicepackage/domain"
	notificationdomain "github.com/orbitlinklabs/orbitlink/internal/notification/domain"
	orderdomain "github.com/orbitlinklabs/orbitlink/internal/order/domain"
	"github.com/orbitlinklabs/orbitlink/internal/profitsharing"
	trackerdomain "github.com/orbitlinklabs/orbitlink/internal/tracker/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run creates or updates every table the engine owns.
func Run(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&trackerdomain.Tracker{},
		&assetdomain.Asset{},
		&packagedomain.DevicePackage{},
		&packagedomain.PackageModel{},
		&packagedomain.BindRule{},
		&packagedomain.RechargeRule{},
		&packagedomain.ProfitSharingRule{},
		&orderdomain.Order{},
		&coupondomain.Coupon{},
		&notificationdomain.NotificationConfig{},
		&alarmconfig.AlarmSnapshot{},
		&profitsharing.Record{},
	)
	if err != nil {
		return err
	}
	log.Named("migration").Info("schema up to date")
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
