package service

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitlinklabs/orbitlink/internal/alarmconfig"
	assetdomain "github.com/orbitlinklabs/orbitlink/internal/asset/domain"
	"github.com/orbitlinklabs/orbitlink/internal/cdc"
	"github.com/orbitlinklabs/orbitlink/internal/clock"
	packagedomain "github.com/orbitlinklabs/orbitlink/internal/devicepackage/domain"
	"github.com/orbitlinklabs/orbitlink/internal/devicestatus"
	notificationdomain "github.com/orbitlinklabs/orbitlink/internal/notification/domain"
	"github.com/orbitlinklabs/orbitlink/internal/serviceperiod"
	trackerdomain "github.com/orbitlinklabs/orbitlink/internal/tracker/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrMissingOpenRule aborts a batch containing a bind-activated package
	// with no resolvable opening rule. Nothing is written.
	ErrMissingOpenRule = errors.New("binding: activating package has no open rule")
	ErrEmptyBatch      = errors.New("binding: no devices in batch")
)

// DeviceWithPackage pairs one loaded device with its resolved package.
// Package may be nil; such devices bind with billing deferred to a later
// recharge.
type DeviceWithPackage struct {
	Tracker *trackerdomain.Tracker
	Asset   *assetdomain.Asset
	Package *packagedomain.DevicePackage
}

type BindRequest struct {
	UserID  snowflake.ID
	Devices []DeviceWithPackage
}

// SideEffectOutcome reports one post-commit fan-out call. Failures here do
// not undo the bind; they are reconciled by retry or replay upstream.
type SideEffectOutcome struct {
	Name string
	Err  error
}

type BindResult struct {
	BoundDevices int
	SideEffects  []SideEffectOutcome
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock clock.Clock

	assetRepo        assetdomain.Repository
	notificationRepo notificationdomain.Repository

	alarmRefresher alarmconfig.Refresher
	deviceStatus   devicestatus.Service
	cdc            cdc.Publisher
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock

	AssetRepo        assetdomain.Repository
	NotificationRepo notificationdomain.Repository

	AlarmRefresher alarmconfig.Refresher
	DeviceStatus   devicestatus.Service
	CDC            cdc.Publisher
}

func NewService(p Params) *Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("binding.service"),
		clock:            p.Clock,
		assetRepo:        p.AssetRepo,
		notificationRepo: p.NotificationRepo,
		alarmRefresher:   p.AlarmRefresher,
		deviceStatus:     p.DeviceStatus,
		cdc:              p.CDC,
	}
}

// BindDevicesToUser binds a batch of devices to one user. The per-device
// asset updates and notification-config inserts form one all-or-nothing
// transaction; alarm refresh, status clearing and event publishing run
// afterwards as isolated best-effort calls.
func (s *Service) BindDevicesToUser(ctx context.Context, req BindRequest) (BindResult, error) {
	if len(req.Devices) == 0 {
		return BindResult{}, ErrEmptyBatch
	}

	now := s.clock.Now(ctx)

	// Resolve windows up front so a bad package aborts before any write.
	windows := make([]*serviceperiod.Window, len(req.Devices))
	for i, device := range req.Devices {
		if device.Package == nil || !device.Package.IsRelatedOpen {
			continue
		}
		rule := packagedomain.ChooseOpenRule(device.Package)
		if rule == nil {
			return BindResult{}, ErrMissingOpenRule
		}
		window := serviceperiod.CalculateOpenWindow(now, device.Tracker.SilentPeriodEndAt, *rule, nil)
		windows[i] = &window
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, device := range req.Devices {
			asset := device.Asset
			if asset.Activated() {
				// Re-binding to a new owner keeps the paid-through time.
				if err := s.assetRepo.Rebind(ctx, tx, asset.ID, req.UserID, now, now); err != nil {
					return err
				}
			} else if windows[i] != nil {
				if err := s.assetRepo.BindFirstTime(ctx, tx, asset.ID, req.UserID, now, windows[i].End, now); err != nil {
					return err
				}
			} else {
				// Billing deferred to a later recharge; the asset stays
				// unactivated.
				if err := s.assetRepo.Rebind(ctx, tx, asset.ID, req.UserID, now, now); err != nil {
					return err
				}
			}

			configs := notificationdomain.NewDefaultConfigs(asset.ID, now)
			if err := s.notificationRepo.InsertBatch(ctx, tx, configs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return BindResult{}, err
	}

	result := BindResult{
		BoundDevices: len(req.Devices),
		SideEffects:  s.fanOut(ctx, req.Devices),
	}

	s.log.Info("devices bound",
		zap.String("user_id", req.UserID.String()),
		zap.Int("devices", result.BoundDevices))
	return result, nil
}

// fanOut runs the post-commit side effects concurrently and collects every
// outcome. All calls are attempted even when some fail.
func (s *Service) fanOut(ctx context.Context, devices []DeviceWithPackage) []SideEffectOutcome {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes []SideEffectOutcome
	)

	record := func(name string, err error) {
		mu.Lock()
		outcomes = append(outcomes, SideEffectOutcome{Name: name, Err: err})
		mu.Unlock()
		if err != nil {
			s.log.Warn("bind side effect failed",
				zap.String("side_effect", name),
				zap.Error(err))
		}
	}

	for _, device := range devices {
		wg.Add(1)
		go func(assetID snowflake.ID) {
			defer wg.Done()
			record("alarm_config_refresh:"+assetID.String(), s.alarmRefresher.Refresh(ctx, assetID))
		}(device.Asset.ID)
	}

	refs := make([]devicestatus.TrackerRef, 0, len(devices))
	events := make([]cdc.Event, 0, len(devices))
	for _, device := range devices {
		refs = append(refs, devicestatus.TrackerRef{
			ID:            device.Tracker.ID,
			TrackerNumber: device.Tracker.TrackerNumber,
		})
		events = append(events, cdc.DeviceChanged(device.Tracker.ID))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		record("realtime_status_clear", s.deviceStatus.BatchClearRealtimeStatus(ctx, refs))
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		record("device_changed_events", s.cdc.PublishBatch(ctx, events))
	}()

	wg.Wait()
	return outcomes
}
