package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// statusFlow is the fulfillment transition table. Forward-only, cancel
// allowed from any non-terminal state.
var statusFlow = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusFlow[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := statusFlow[status]; !ok {
		return "", ErrValidation
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch status := PaymentStatus(s); status {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusFailed:
		return status, nil
	default:
		return "", ErrValidation
	}
}

type Order struct {
	ID                 string
	RestaurantID       string
	UserID             string
	Status             OrderStatus
	PaymentStatus      PaymentStatus
	CancellationReason string
	Amount             decimal.Decimal
	Version            uint64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Settled reports whether the order qualifies for the restaurant wallet
// credit: delivered and paid, in whichever order the two facts arrived.
func (o *Order) Settled() bool {
	return o.Status == OrderStatusDelivered && o.PaymentStatus == PaymentStatusPaid
}

// StatusChange is the fact emitted after a persisted order mutation,
// consumed by the notification fan-out. Emission is best-effort and never
// rolls back the mutation that produced it.
type StatusChange struct {
	OrderID            string
	UserID             string
	RestaurantID       string
	PreviousStatus     OrderStatus
	Status             OrderStatus
	PaymentStatus      PaymentStatus
	CancellationReason string
}
