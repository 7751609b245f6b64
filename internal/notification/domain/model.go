package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// AlarmType enumerates the alarm categories a tracker can raise. The set is
// fixed configuration: one NotificationConfig row is created per value when
// an asset is bound.
type AlarmType string

const (
	AlarmTypeLowBattery    AlarmType = "low_battery"
	AlarmTypePowerOff      AlarmType = "power_off"
	AlarmTypeVibration     AlarmType = "vibration"
	AlarmTypeSpeeding      AlarmType = "speeding"
	AlarmTypeGeofenceEnter AlarmType = "geofence_enter"
	AlarmTypeGeofenceExit  AlarmType = "geofence_exit"
	AlarmTypeSOS           AlarmType = "sos"
)

// AlarmTypes returns the full enumeration in creation order.
func AlarmTypes() []AlarmType {
	return []AlarmType{
		AlarmTypeLowBattery,
		AlarmTypePowerOff,
		AlarmTypeVibration,
		AlarmTypeSpeeding,
		AlarmTypeGeofenceEnter,
		AlarmTypeGeofenceExit,
		AlarmTypeSOS,
	}
}

const (
	defaultWindowStart = "00:00"
	defaultWindowEnd   = "23:59"
)

// NotificationConfig holds per-asset, per-alarm-type channel toggles and a
// daily delivery window.
type NotificationConfig struct {
	ID        string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	AssetID   snowflake.ID `json:"asset_id" gorm:"not null;index"`
	AlarmType AlarmType    `json:"alarm_type" gorm:"type:varchar(32);not null"`

	AppEnabled   bool `json:"app_enabled" gorm:"not null;default:false"`
	SMSEnabled   bool `json:"sms_enabled" gorm:"not null;default:false"`
	EmailEnabled bool `json:"email_enabled" gorm:"not null;default:false"`

	WindowStart string `json:"window_start" gorm:"type:varchar(5);not null"`
	WindowEnd   string `json:"window_end" gorm:"type:varchar(5);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (NotificationConfig) TableName() string { return "notification_configs" }

// NewDefaultConfigs builds one disabled config per alarm type with the
// full-day default window.
func NewDefaultConfigs(assetID snowflake.ID, now time.Time) []NotificationConfig {
	types := AlarmTypes()
	configs := make([]NotificationConfig, 0, len(types))
	for _, alarmType := range types {
		configs = append(configs, NotificationConfig{
			ID:          uuid.NewString(),
			AssetID:     assetID,
			AlarmType:   alarmType,
			WindowStart: defaultWindowStart,
			WindowEnd:   defaultWindowEnd,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return configs
}
