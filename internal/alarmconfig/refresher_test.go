package alarmconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	notificationdomain "github.com/orbitlinklabs/orbitlink/internal/notification/domain"
	notificationrepo "github.com/orbitlinklabs/orbitlink/internal/notification/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (Refresher, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&notificationdomain.NotificationConfig{},
		&AlarmSnapshot{},
	))

	refresher := NewRefresher(Params{
		DB:               db,
		Log:              zap.NewNop(),
		NotificationRepo: notificationrepo.Provide(),
	})
	return refresher, db
}

func enabledTypes(t *testing.T, db *gorm.DB, assetID int64) []notificationdomain.AlarmType {
	t.Helper()
	var snapshot AlarmSnapshot
	require.NoError(t, db.Raw(`SELECT * FROM asset_alarm_snapshots WHERE asset_id = ?`, assetID).Scan(&snapshot).Error)
	var types []notificationdomain.AlarmType
	require.NoError(t, json.Unmarshal(snapshot.EnabledTypes, &types))
	return types
}

func TestRefreshCollectsTypesWithAnyChannelEnabled(t *testing.T) {
	refresher, db := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	configs := notificationdomain.NewDefaultConfigs(100, now)
	for i := range configs {
		switch configs[i].AlarmType {
		case notificationdomain.AlarmTypeSOS:
			configs[i].AppEnabled = true
		case notificationdomain.AlarmTypeLowBattery:
			configs[i].SMSEnabled = true
		}
	}
	require.NoError(t, notificationrepo.Provide().InsertBatch(ctx, db, configs))

	require.NoError(t, refresher.Refresh(ctx, 100))

	types := enabledTypes(t, db, 100)
	assert.ElementsMatch(t, []notificationdomain.AlarmType{
		notificationdomain.AlarmTypeSOS,
		notificationdomain.AlarmTypeLowBattery,
	}, types)
}

func TestRefreshReplacesPreviousSnapshot(t *testing.T) {
	refresher, db := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	configs := notificationdomain.NewDefaultConfigs(100, now)
	for i := range configs {
		if configs[i].AlarmType == notificationdomain.AlarmTypeVibration {
			configs[i].EmailEnabled = true
		}
	}
	require.NoError(t, notificationrepo.Provide().InsertBatch(ctx, db, configs))
	require.NoError(t, refresher.Refresh(ctx, 100))

	// Disable everything and refresh again.
	require.NoError(t, db.Exec(`UPDATE notification_configs SET email_enabled = 0 WHERE asset_id = ?`, 100).Error)
	require.NoError(t, refresher.Refresh(ctx, 100))

	assert.Empty(t, enabledTypes(t, db, 100))

	var count int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM asset_alarm_snapshots WHERE asset_id = ?`, 100).Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}
