package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/orbitlinklabs/orbitlink/internal/asset/domain"
	"github.com/orbitlinklabs/orbitlink/internal/cdc"
	"github.com/orbitlinklabs/orbitlink/internal/clock"
	coupondomain "github.com/orbitlinklabs/orbitlink/internal/coupon/domain"
	orderdomain "github.com/orbitlinklabs/orbitlink/internal/order/domain"
	"github.com/orbitlinklabs/orbitlink/internal/profitsharing"
	"github.com/orbitlinklabs/orbitlink/internal/serviceperiod"
	trackerdomain "github.com/orbitlinklabs/orbitlink/internal/tracker/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock clock.Clock

	orderRepo   orderdomain.Repository
	assetRepo   assetdomain.Repository
	trackerRepo trackerdomain.Repository
	couponRepo  coupondomain.Repository

	cdc           cdc.Publisher
	profitSharing profitsharing.Creator
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock

	OrderRepo   orderdomain.Repository
	AssetRepo   assetdomain.Repository
	TrackerRepo trackerdomain.Repository
	CouponRepo  coupondomain.Repository

	CDC           cdc.Publisher
	ProfitSharing profitsharing.Creator
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("order.service"),
		clock:         p.Clock,
		orderRepo:     p.OrderRepo,
		assetRepo:     p.AssetRepo,
		trackerRepo:   p.TrackerRepo,
		couponRepo:    p.CouponRepo,
		cdc:           p.CDC,
		profitSharing: p.ProfitSharing,
	}
}

func (s *Service) HandlePaySuccess(ctx context.Context, req orderdomain.PaySuccessRequest) (orderdomain.SettlementResult, error) {
	data, err := s.GetOrderAndDeviceDataByOrderNumber(ctx, req.OrderNumber)
	if err != nil {
		return orderdomain.SettlementResult{}, err
	}
	if data.Order == nil {
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementOrderNotFound,
			Reason: "no order for order number",
		}, nil
	}

	if data.Order.ProcessedAt != nil {
		s.log.Info("pay-success already processed",
			zap.String("order_number", req.OrderNumber))
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementDuplicate,
			Reason: "order already processed",
		}, nil
	}

	switch data.Order.Target {
	case orderdomain.OrderTargetActivate:
		return s.applyActivation(ctx, data, req)
	case orderdomain.OrderTargetRenewal:
		return s.applyRenewal(ctx, data, req)
	default:
		s.log.Error("order has unknown target",
			zap.String("order_number", req.OrderNumber),
			zap.String("target", string(data.Order.Target)))
		return orderdomain.SettlementResult{}, orderdomain.ErrUnknownOrderTarget
	}
}

func (s *Service) applyActivation(ctx context.Context, data orderdomain.OrderDeviceData, req orderdomain.PaySuccessRequest) (orderdomain.SettlementResult, error) {
	if data.Asset == nil || data.Tracker == nil {
		return orderdomain.SettlementResult{}, orderdomain.ErrDeviceDataMissing
	}

	now := s.clock.Now(ctx)
	window := serviceperiod.CalculateOpenWindow(now, data.Tracker.SilentPeriodEndAt, data.Order.PeriodRule(), data.Order.GiftRule())

	var applied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.orderRepo.MarkPaid(ctx, tx, data.Order.ID, req.Amount, req.PaidAt, req.TransactionID, now)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		applied = true
		return s.assetRepo.UpdateServicePeriod(ctx, tx, data.Asset.ID, window.Start, window.End)
	})
	if err != nil {
		return orderdomain.SettlementResult{}, err
	}
	if !applied {
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementDuplicate,
			Reason: "order already processed",
		}, nil
	}

	data.Order.PaidAmount = &req.Amount
	data.Order.PaidAt = &req.PaidAt

	s.emitDeviceChanged(ctx, data.Tracker.ID)
	s.requestProfitSharing(ctx, data.Order)

	s.log.Info("activation settled",
		zap.String("order_number", data.Order.OrderNumber),
		zap.Time("service_start", window.Start),
		zap.Time("service_end", window.End))
	return orderdomain.SettlementResult{Status: orderdomain.SettlementApplied}, nil
}

func (s *Service) applyRenewal(ctx context.Context, data orderdomain.OrderDeviceData, req orderdomain.PaySuccessRequest) (orderdomain.SettlementResult, error) {
	if data.Asset == nil {
		return orderdomain.SettlementResult{}, orderdomain.ErrDeviceDataMissing
	}
	if data.Asset.ServiceEndAt == nil {
		s.log.Warn("renewal for never-activated asset",
			zap.String("order_number", data.Order.OrderNumber),
			zap.String("asset_id", data.Asset.ID.String()))
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementPreconditionFailed,
			Reason: "asset has no service end time",
		}, nil
	}

	now := s.clock.Now(ctx)
	newEnd := serviceperiod.ExtendForRenewal(*data.Asset.ServiceEndAt, data.Order.PeriodRule(), data.Order.GiftRule())

	var applied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.orderRepo.MarkPaid(ctx, tx, data.Order.ID, req.Amount, req.PaidAt, req.TransactionID, now)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		applied = true

		if err := s.consumeCoupon(ctx, tx, data.Order.ID, req.Attach, now); err != nil {
			return err
		}
		return s.assetRepo.UpdateServiceEnd(ctx, tx, data.Asset.ID, newEnd)
	})
	if err != nil {
		return orderdomain.SettlementResult{}, err
	}
	if !applied {
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementDuplicate,
			Reason: "order already processed",
		}, nil
	}

	data.Order.PaidAmount = &req.Amount
	data.Order.PaidAt = &req.PaidAt

	if data.Tracker != nil {
		s.emitDeviceChanged(ctx, data.Tracker.ID)
	}
	s.requestProfitSharing(ctx, data.Order)

	s.log.Info("renewal settled",
		zap.String("order_number", data.Order.OrderNumber),
		zap.Time("service_end", newEnd))
	return orderdomain.SettlementResult{Status: orderdomain.SettlementApplied}, nil
}

// consumeCoupon links an unused renewal-promotion coupon named by the
// gateway attach data to the order. A missing coupon is not an error.
func (s *Service) consumeCoupon(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, attach string, now time.Time) error {
	code := strings.TrimSpace(attach)
	if code == "" {
		return nil
	}

	coupon, err := s.couponRepo.FindUnusedByCode(ctx, tx, code, coupondomain.RenewalActivityTag)
	if err != nil {
		return err
	}
	if coupon == nil {
		return nil
	}

	won, err := s.couponRepo.MarkUsed(ctx, tx, coupon.ID, orderID, now)
	if err != nil {
		return err
	}
	if !won {
		s.log.Info("coupon already consumed elsewhere",
			zap.String("coupon_code", code))
	}
	return nil
}

func (s *Service) HandleRefundSuccess(ctx context.Context, req orderdomain.RefundSuccessRequest) (orderdomain.SettlementResult, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, s.db, req.OrderNumber)
	if err != nil {
		return orderdomain.SettlementResult{}, err
	}
	if order == nil {
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementOrderNotFound,
			Reason: "no order for order number",
		}, nil
	}

	if order.RefundedAt != nil {
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementDuplicate,
			Reason: "order already refunded",
		}, nil
	}

	// Refund is financial-only: the asset's service window is left as is.
	won, err := s.orderRepo.MarkRefunded(ctx, s.db, order.ID, req.Amount, req.RefundedAt)
	if err != nil {
		return orderdomain.SettlementResult{}, err
	}
	if !won {
		return orderdomain.SettlementResult{
			Status: orderdomain.SettlementDuplicate,
			Reason: "order already refunded",
		}, nil
	}

	s.log.Info("refund settled", zap.String("order_number", order.OrderNumber))
	return orderdomain.SettlementResult{Status: orderdomain.SettlementApplied}, nil
}

func (s *Service) GetOrderByRefundOrderNumber(ctx context.Context, refundOrderNumber string) (*orderdomain.Order, error) {
	return s.orderRepo.FindByRefundOrderNumber(ctx, s.db, refundOrderNumber)
}

func (s *Service) GetOrderAndDeviceDataByOrderNumber(ctx context.Context, orderNumber string) (orderdomain.OrderDeviceData, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, s.db, orderNumber)
	if err != nil {
		return orderdomain.OrderDeviceData{}, err
	}
	if order == nil {
		return orderdomain.OrderDeviceData{}, nil
	}

	device, err := s.GetDeviceDataByAssetID(ctx, order.AssetID)
	if err != nil {
		return orderdomain.OrderDeviceData{}, err
	}
	return orderdomain.OrderDeviceData{
		Order:   order,
		Asset:   device.Asset,
		Tracker: device.Tracker,
	}, nil
}

func (s *Service) GetDeviceDataByAssetID(ctx context.Context, assetID snowflake.ID) (orderdomain.DeviceData, error) {
	asset, err := s.assetRepo.FindByID(ctx, s.db, assetID)
	if err != nil {
		return orderdomain.DeviceData{}, err
	}
	if asset == nil {
		return orderdomain.DeviceData{}, nil
	}

	tracker, err := s.trackerRepo.FindByAssetID(ctx, s.db, assetID)
	if err != nil {
		return orderdomain.DeviceData{}, err
	}
	return orderdomain.DeviceData{Asset: asset, Tracker: tracker}, nil
}

func (s *Service) emitDeviceChanged(ctx context.Context, trackerID snowflake.ID) {
	if err := s.cdc.Publish(ctx, cdc.DeviceChanged(trackerID)); err != nil {
		s.log.Warn("device-changed event publish failed",
			zap.Error(err),
			zap.String("tracker_id", trackerID.String()))
	}
}

func (s *Service) requestProfitSharing(ctx context.Context, order *orderdomain.Order) {
	if !order.ProfitSharing {
		return
	}
	if err := s.profitSharing.CreateRecord(ctx, order); err != nil {
		s.log.Warn("profit-sharing record creation failed",
			zap.Error(err),
			zap.String("order_number", order.OrderNumber))
	}
}
