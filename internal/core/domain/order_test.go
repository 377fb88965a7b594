package domain_test

import (
	"testing"

	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_TransitionTable(t *testing.T) {
	all := []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusPreparing,
		domain.OrderStatusReady,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	}

	forward := map[domain.OrderStatus]domain.OrderStatus{
		domain.OrderStatusPending:   domain.OrderStatusConfirmed,
		domain.OrderStatusConfirmed: domain.OrderStatusPreparing,
		domain.OrderStatusPreparing: domain.OrderStatusReady,
		domain.OrderStatusReady:     domain.OrderStatusDelivered,
	}

	for _, from := range all {
		for _, to := range all {
			allowed := false
			if next, ok := forward[from]; ok && next == to {
				allowed = true
			}
			if to == domain.OrderStatusCancelled && !from.Terminal() {
				allowed = true
			}
			assert.Equal(t, allowed, from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, domain.OrderStatusDelivered.Terminal())
	assert.True(t, domain.OrderStatusCancelled.Terminal())
	assert.False(t, domain.OrderStatusPending.Terminal())
	assert.False(t, domain.OrderStatusReady.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus("preparing")
	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparing, status)

	_, err = domain.ParseOrderStatus("shipped")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := domain.ParsePaymentStatus("paid")
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, status)

	_, err = domain.ParsePaymentStatus("refunded")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrder_Settled(t *testing.T) {
	order := domain.Order{Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid}
	assert.True(t, order.Settled())

	order.PaymentStatus = domain.PaymentStatusUnpaid
	assert.False(t, order.Settled())

	order.Status = domain.OrderStatusReady
	order.PaymentStatus = domain.PaymentStatusPaid
	assert.False(t, order.Settled())
}
