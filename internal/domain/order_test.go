package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"processing to delivered", OrderStatusProcessing, OrderStatusDelivered, false},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped back to processing", OrderStatusShipped, OrderStatusProcessing, false},
		{"delivered to shipped", OrderStatusDelivered, OrderStatusShipped, false},
		{"delivered to delivered", OrderStatusDelivered, OrderStatusDelivered, false},
		{"processing to processing", OrderStatusProcessing, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatusNext(t *testing.T) {
	next, ok := OrderStatusProcessing.Next()
	require.True(t, ok)
	assert.Equal(t, OrderStatusShipped, next)

	next, ok = OrderStatusShipped.Next()
	require.True(t, ok)
	assert.Equal(t, OrderStatusDelivered, next)

	_, ok = OrderStatusDelivered.Next()
	assert.False(t, ok)

	_, ok = OrderStatus("cancelled").Next()
	assert.False(t, ok)
}

func TestOrderAdvanceCannotSkipShipped(t *testing.T) {
	order := &Order{Status: OrderStatusProcessing}

	require.NoError(t, order.Advance(time.Now()))

	// A processing order ships; it never jumps straight to delivered.
	assert.Equal(t, OrderStatusShipped, order.Status)
	assert.Nil(t, order.DeliveredAt)
}

func TestOrderAdvanceStampsDeliveredAt(t *testing.T) {
	order := &Order{Status: OrderStatusShipped}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, order.Advance(now))

	assert.Equal(t, OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, now, *order.DeliveredAt)
}

func TestOrderAdvanceRejectsDelivered(t *testing.T) {
	delivered := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	order := &Order{Status: OrderStatusDelivered, DeliveredAt: &delivered}

	err := order.Advance(time.Now())

	require.Error(t, err)
	assert.Equal(t, OrderStatusDelivered, order.Status)
	assert.Equal(t, delivered, *order.DeliveredAt)
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentMethodCOD.Valid())
	assert.True(t, PaymentMethodOnline.Valid())
	assert.False(t, PaymentMethod("CARD").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
