package domain

import (
	"testing"
	"time"

	"github.com/orbitlinklabs/orbitlink/internal/period"
	"github.com/stretchr/testify/assert"
)

func TestOrderStateDerivation(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		order Order
		want  OrderState
	}{
		{
			name:  "unpaid",
			order: Order{},
			want:  OrderStateUnpaid,
		},
		{
			name:  "paid",
			order: Order{PaidAt: &now},
			want:  OrderStatePaid,
		},
		{
			name:  "refund pending",
			order: Order{PaidAt: &now, RefundApplyAt: &now},
			want:  OrderStateRefundPending,
		},
		{
			name:  "refunded",
			order: Order{PaidAt: &now, RefundApplyAt: &now, RefundedAt: &now},
			want:  OrderStateRefunded,
		},
		{
			name:  "refunded without apply timestamp",
			order: Order{PaidAt: &now, RefundedAt: &now},
			want:  OrderStateRefunded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.State())
		})
	}
}

func TestGiftRuleRequiresBothFields(t *testing.T) {
	duration := 7
	unit := period.UnitDay

	order := Order{PeriodDuration: 30, PeriodUnit: period.UnitDay}
	assert.Nil(t, order.GiftRule())

	order.GiftDuration = &duration
	assert.Nil(t, order.GiftRule())

	order.GiftUnit = &unit
	rule := order.GiftRule()
	assert.Equal(t, &period.Rule{Duration: 7, Unit: period.UnitDay}, rule)
}
