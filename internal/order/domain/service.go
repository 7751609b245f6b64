package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/orbitlinklabs/orbitlink/internal/asset/domain"
	trackerdomain "github.com/orbitlinklabs/orbitlink/internal/tracker/domain"
)

// Data-integrity errors. These indicate upstream configuration mistakes and
// are not retried.
var (
	ErrUnknownOrderTarget = errors.New("order: unknown order target")
	ErrDeviceDataMissing  = errors.New("order: asset or tracker missing for order")
)

type SettlementStatus string

const (
	// SettlementApplied means this call performed the settlement writes.
	SettlementApplied SettlementStatus = "APPLIED"
	// SettlementDuplicate means the guard field was already set; nothing was
	// written and the caller may safely treat the callback as handled.
	SettlementDuplicate SettlementStatus = "DUPLICATE"
	// SettlementPreconditionFailed means a business precondition was missing
	// and the core write did not proceed.
	SettlementPreconditionFailed SettlementStatus = "PRECONDITION_FAILED"
	// SettlementOrderNotFound means no order matched the given number.
	SettlementOrderNotFound SettlementStatus = "ORDER_NOT_FOUND"
)

type SettlementResult struct {
	Status SettlementStatus
	Reason string
}

type PaySuccessRequest struct {
	OrderNumber   string
	Amount        int64
	PaidAt        time.Time
	TransactionID string

	// Attach is opaque gateway passthrough data; a non-empty value is tried
	// as a renewal coupon code.
	Attach string
}

type RefundSuccessRequest struct {
	OrderNumber string
	Amount      int64
	RefundedAt  time.Time
}

// DeviceData bundles the asset/tracker pair backing an order. Either field
// may be nil when the linked entity is absent.
type DeviceData struct {
	Asset   *assetdomain.Asset
	Tracker *trackerdomain.Tracker
}

// OrderDeviceData is the read-side view for settlement callers. Order is nil
// when the order itself is missing, which callers must distinguish from an
// order whose device data is gone.
type OrderDeviceData struct {
	Order   *Order
	Asset   *assetdomain.Asset
	Tracker *trackerdomain.Tracker
}

type Service interface {
	HandlePaySuccess(ctx context.Context, req PaySuccessRequest) (SettlementResult, error)
	HandleRefundSuccess(ctx context.Context, req RefundSuccessRequest) (SettlementResult, error)

	GetOrderByRefundOrderNumber(ctx context.Context, refundOrderNumber string) (*Order, error)
	GetOrderAndDeviceDataByOrderNumber(ctx context.Context, orderNumber string) (OrderDeviceData, error)
	GetDeviceDataByAssetID(ctx context.Context, assetID snowflake.ID) (DeviceData, error)
}
