package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	assetdomain "github.com/orbitlinklabs/orbitlink/internal/asset/domain"
	assetrepo "github.com/orbitlinklabs/orbitlink/internal/asset/repository"
	"github.com/orbitlinklabs/orbitlink/internal/cdc"
	"github.com/orbitlinklabs/orbitlink/internal/clock"
	coupondomain "github.com/orbitlinklabs/orbitlink/internal/coupon/domain"
	couponrepo "github.com/orbitlinklabs/orbitlink/internal/coupon/repository"
	orderdomain "github.com/orbitlinklabs/orbitlink/internal/order/domain"
	orderrepo "github.com/orbitlinklabs/orbitlink/internal/order/repository"
	"github.com/orbitlinklabs/orbitlink/internal/period"
	trackerdomain "github.com/orbitlinklabs/orbitlink/internal/tracker/domain"
	trackerrepo "github.com/orbitlinklabs/orbitlink/internal/tracker/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event cdc.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, events []cdc.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type mockProfitSharing struct {
	mock.Mock
}

func (m *mockProfitSharing) CreateRecord(ctx context.Context, order *orderdomain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type fixture struct {
	db            *gorm.DB
	svc           orderdomain.Service
	publisher     *mockPublisher
	profitSharing *mockProfitSharing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&trackerdomain.Tracker{},
		&assetdomain.Asset{},
		&orderdomain.Order{},
		&coupondomain.Coupon{},
	))

	publisher := &mockPublisher{}
	profitSharing := &mockProfitSharing{}

	svc := NewService(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         clock.New(),
		OrderRepo:     orderrepo.Provide(),
		AssetRepo:     assetrepo.Provide(),
		TrackerRepo:   trackerrepo.Provide(),
		CouponRepo:    couponrepo.Provide(),
		CDC:           publisher,
		ProfitSharing: profitSharing,
	})

	return &fixture{db: db, svc: svc, publisher: publisher, profitSharing: profitSharing}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) seedDevice(t *testing.T, assetID, trackerID snowflake.ID, silentEnd time.Time, serviceEnd *time.Time) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, assetrepo.Provide().Insert(ctx, f.db, &assetdomain.Asset{
		ID:           assetID,
		MerchantID:   77,
		TrackerID:    trackerID,
		ServiceEndAt: serviceEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
	require.NoError(t, trackerrepo.Provide().Insert(ctx, f.db, &trackerdomain.Tracker{
		ID:                trackerID,
		TrackerNumber:     fmt.Sprintf("TRK-%d", trackerID),
		ModelID:           5,
		AssetID:           assetID,
		SilentPeriodEndAt: silentEnd,
		CreatedAt:         now,
		UpdatedAt:         now,
	}))
}

func (f *fixture) seedOrder(t *testing.T, o *orderdomain.Order) {
	t.Helper()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	require.NoError(t, orderrepo.Provide().Insert(context.Background(), f.db, o))
}

func TestHandlePaySuccessActivation(t *testing.T) {
	f := newFixture(t)
	now := date(2024, time.January, 5)
	ctx := clock.WithFixedTime(context.Background(), now)

	f.seedDevice(t, 100, 200, date(2024, time.January, 10), nil)
	gift := 7
	giftUnit := period.UnitDay
	f.seedOrder(t, &orderdomain.Order{
		ID:             1,
		OrderNumber:    "ORD-1",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetActivate,
		PeriodDuration: 30,
		PeriodUnit:     period.UnitDay,
		GiftDuration:   &gift,
		GiftUnit:       &giftUnit,
	})

	f.publisher.On("Publish", mock.Anything, cdc.DeviceChanged(200)).Return(nil).Once()

	result, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber:   "ORD-1",
		Amount:        1999,
		PaidAt:        now,
		TransactionID: "wx-tx-1",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementApplied, result.Status)

	order, err := orderrepo.Provide().FindByOrderNumber(ctx, f.db, "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, order.ProcessedAt)
	require.NotNil(t, order.PaidAmount)
	assert.Equal(t, int64(1999), *order.PaidAmount)
	require.NotNil(t, order.ExternalOrderNumber)
	assert.Equal(t, "wx-tx-1", *order.ExternalOrderNumber)
	assert.Equal(t, orderdomain.OrderStatePaid, order.State())

	asset, err := assetrepo.Provide().FindByID(ctx, f.db, 100)
	require.NoError(t, err)
	require.NotNil(t, asset.ServiceStartAt)
	require.NotNil(t, asset.ServiceEndAt)
	// Inside the silent period, billing anchors at now.
	assert.Equal(t, now, asset.ServiceStartAt.UTC())
	assert.Equal(t, date(2024, time.February, 11), asset.ServiceEndAt.UTC())

	f.publisher.AssertExpectations(t)
}

func TestHandlePaySuccessDuplicateIsNoOp(t *testing.T) {
	f := newFixture(t)
	now := date(2024, time.January, 5)
	ctx := clock.WithFixedTime(context.Background(), now)

	f.seedDevice(t, 100, 200, date(2024, time.January, 10), nil)
	f.seedOrder(t, &orderdomain.Order{
		ID:             1,
		OrderNumber:    "ORD-1",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetActivate,
		PeriodDuration: 30,
		PeriodUnit:     period.UnitDay,
	})

	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	first, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-1", Amount: 1999, PaidAt: now, TransactionID: "wx-tx-1",
	})
	require.NoError(t, err)
	require.Equal(t, orderdomain.SettlementApplied, first.Status)

	asset, err := assetrepo.Provide().FindByID(ctx, f.db, 100)
	require.NoError(t, err)
	endAfterFirst := asset.ServiceEndAt.UTC()

	second, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-1", Amount: 1999, PaidAt: now, TransactionID: "wx-tx-1",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementDuplicate, second.Status)

	asset, err = assetrepo.Provide().FindByID(ctx, f.db, 100)
	require.NoError(t, err)
	assert.Equal(t, endAfterFirst, asset.ServiceEndAt.UTC())

	// Publish must have fired exactly once.
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestHandlePaySuccessRenewalExtendsFromCurrentEnd(t *testing.T) {
	f := newFixture(t)
	now := date(2024, time.March, 15)
	ctx := clock.WithFixedTime(context.Background(), now)

	currentEnd := date(2024, time.January, 31)
	f.seedDevice(t, 100, 200, date(2023, time.June, 1), &currentEnd)
	f.seedOrder(t, &orderdomain.Order{
		ID:             2,
		OrderNumber:    "ORD-2",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetRenewal,
		PeriodDuration: 1,
		PeriodUnit:     period.UnitMonth,
		ProfitSharing:  true,
	})

	f.publisher.On("Publish", mock.Anything, cdc.DeviceChanged(200)).Return(nil).Once()
	f.profitSharing.On("CreateRecord", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-2", Amount: 999, PaidAt: now, TransactionID: "wx-tx-2",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementApplied, result.Status)

	asset, err := assetrepo.Provide().FindByID(ctx, f.db, 100)
	require.NoError(t, err)
	// Renewal extends from the paid-through time, not from now; Jan 31 + 1
	// month clamps to leap-day February.
	assert.Equal(t, date(2024, time.February, 29), asset.ServiceEndAt.UTC())
	assert.Nil(t, asset.ServiceStartAt)

	f.publisher.AssertExpectations(t)
	f.profitSharing.AssertExpectations(t)
}

func TestHandlePaySuccessRenewalRequiresActivatedAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedDevice(t, 100, 200, date(2024, time.January, 10), nil)
	f.seedOrder(t, &orderdomain.Order{
		ID:             3,
		OrderNumber:    "ORD-3",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetRenewal,
		PeriodDuration: 1,
		PeriodUnit:     period.UnitMonth,
	})

	result, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-3", Amount: 999, PaidAt: time.Now().UTC(), TransactionID: "wx-tx-3",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementPreconditionFailed, result.Status)

	order, err := orderrepo.Provide().FindByOrderNumber(ctx, f.db, "ORD-3")
	require.NoError(t, err)
	assert.Nil(t, order.ProcessedAt)

	asset, err := assetrepo.Provide().FindByID(ctx, f.db, 100)
	require.NoError(t, err)
	assert.Nil(t, asset.ServiceEndAt)
}

func TestHandlePaySuccessRenewalConsumesCoupon(t *testing.T) {
	f := newFixture(t)
	now := date(2024, time.March, 15)
	ctx := clock.WithFixedTime(context.Background(), now)

	currentEnd := date(2024, time.April, 1)
	f.seedDevice(t, 100, 200, date(2023, time.June, 1), &currentEnd)
	f.seedOrder(t, &orderdomain.Order{
		ID:             4,
		OrderNumber:    "ORD-4",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetRenewal,
		PeriodDuration: 30,
		PeriodUnit:     period.UnitDay,
	})
	require.NoError(t, couponrepo.Provide().Insert(ctx, f.db, &coupondomain.Coupon{
		ID:          900,
		Code:        "SPRING24",
		ActivityTag: coupondomain.RenewalActivityTag,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-4", Amount: 999, PaidAt: now, TransactionID: "wx-tx-4",
		Attach: "SPRING24",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementApplied, result.Status)

	var coupon coupondomain.Coupon
	require.NoError(t, f.db.Raw(`SELECT * FROM coupons WHERE id = ?`, 900).Scan(&coupon).Error)
	require.NotNil(t, coupon.UsedAt)
	require.NotNil(t, coupon.OrderID)
	assert.Equal(t, snowflake.ID(4), *coupon.OrderID)
}

func TestHandlePaySuccessRenewalUnknownCouponIsIgnored(t *testing.T) {
	f := newFixture(t)
	now := date(2024, time.March, 15)
	ctx := clock.WithFixedTime(context.Background(), now)

	currentEnd := date(2024, time.April, 1)
	f.seedDevice(t, 100, 200, date(2023, time.June, 1), &currentEnd)
	f.seedOrder(t, &orderdomain.Order{
		ID:             5,
		OrderNumber:    "ORD-5",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetRenewal,
		PeriodDuration: 30,
		PeriodUnit:     period.UnitDay,
	})

	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-5", Amount: 999, PaidAt: now, TransactionID: "wx-tx-5",
		Attach: "NO-SUCH-COUPON",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementApplied, result.Status)
}

func TestHandlePaySuccessUnknownTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedDevice(t, 100, 200, date(2024, time.January, 10), nil)
	f.seedOrder(t, &orderdomain.Order{
		ID:             6,
		OrderNumber:    "ORD-6",
		AssetID:        100,
		MerchantID:     77,
		Target:         orderdomain.OrderTarget("MYSTERY"),
		PeriodDuration: 30,
		PeriodUnit:     period.UnitDay,
	})

	_, err := f.svc.HandlePaySuccess(ctx, orderdomain.PaySuccessRequest{
		OrderNumber: "ORD-6", Amount: 999, PaidAt: time.Now().UTC(), TransactionID: "wx-tx-6",
	})
	assert.ErrorIs(t, err, orderdomain.ErrUnknownOrderTarget)
}

func TestHandlePaySuccessOrderNotFound(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.HandlePaySuccess(context.Background(), orderdomain.PaySuccessRequest{
		OrderNumber: "NOPE", Amount: 999, PaidAt: time.Now().UTC(), TransactionID: "tx",
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementOrderNotFound, result.Status)
}

func TestHandleRefundSuccessIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := date(2024, time.May, 1)

	currentEnd := date(2024, time.June, 1)
	f.seedDevice(t, 100, 200, date(2023, time.June, 1), &currentEnd)
	paidAt := date(2024, time.April, 1)
	processedAt := paidAt
	amount := int64(999)
	refundNo := "REF-7"
	f.seedOrder(t, &orderdomain.Order{
		ID:                7,
		OrderNumber:       "ORD-7",
		RefundOrderNumber: &refundNo,
		AssetID:           100,
		MerchantID:        77,
		Target:            orderdomain.OrderTargetRenewal,
		PaidAmount:        &amount,
		PaidAt:            &paidAt,
		ProcessedAt:       &processedAt,
		PeriodDuration:    30,
		PeriodUnit:        period.UnitDay,
	})

	first, err := f.svc.HandleRefundSuccess(ctx, orderdomain.RefundSuccessRequest{
		OrderNumber: "ORD-7", Amount: 999, RefundedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementApplied, first.Status)

	order, err := orderrepo.Provide().FindByOrderNumber(ctx, f.db, "ORD-7")
	require.NoError(t, err)
	require.NotNil(t, order.RefundedAt)
	assert.Equal(t, orderdomain.OrderStateRefunded, order.State())

	// Refund never rolls back service time.
	asset, err := assetrepo.Provide().FindByID(ctx, f.db, 100)
	require.NoError(t, err)
	assert.Equal(t, currentEnd, asset.ServiceEndAt.UTC())

	second, err := f.svc.HandleRefundSuccess(ctx, orderdomain.RefundSuccessRequest{
		OrderNumber: "ORD-7", Amount: 999, RefundedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, orderdomain.SettlementDuplicate, second.Status)
}

func TestGetOrderByRefundOrderNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedDevice(t, 100, 200, date(2024, time.January, 10), nil)
	refundNo := "REF-8"
	f.seedOrder(t, &orderdomain.Order{
		ID:                8,
		OrderNumber:       "ORD-8",
		RefundOrderNumber: &refundNo,
		AssetID:           100,
		MerchantID:        77,
		Target:            orderdomain.OrderTargetActivate,
		PeriodDuration:    30,
		PeriodUnit:        period.UnitDay,
	})

	order, err := f.svc.GetOrderByRefundOrderNumber(ctx, "REF-8")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "ORD-8", order.OrderNumber)

	missing, err := f.svc.GetOrderByRefundOrderNumber(ctx, "REF-NONE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetOrderAndDeviceDataDistinguishesMissingPieces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Order without any backing asset.
	f.seedOrder(t, &orderdomain.Order{
		ID:             9,
		OrderNumber:    "ORD-9",
		AssetID:        12345,
		MerchantID:     77,
		Target:         orderdomain.OrderTargetActivate,
		PeriodDuration: 30,
		PeriodUnit:     period.UnitDay,
	})

	data, err := f.svc.GetOrderAndDeviceDataByOrderNumber(ctx, "ORD-9")
	require.NoError(t, err)
	require.NotNil(t, data.Order)
	assert.Nil(t, data.Asset)
	assert.Nil(t, data.Tracker)

	empty, err := f.svc.GetOrderAndDeviceDataByOrderNumber(ctx, "ORD-GONE")
	require.NoError(t, err)
	assert.Nil(t, empty.Order)
}
