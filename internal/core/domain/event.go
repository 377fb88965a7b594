package domain

import "github.com/govalues/decimal"

type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "completed"
	PaymentEventFailed    PaymentEventType = "failed"
)

// PaymentEvent is a payment-outcome fact delivered at-least-once by the
// broker. EventID dedupes redelivery; Amount is informational.
type PaymentEvent struct {
	EventID string
	Type    PaymentEventType
	OrderID string
	Amount  decimal.Decimal
}

func (t PaymentEventType) PaymentStatus() PaymentStatus {
	if t == PaymentEventCompleted {
		return PaymentStatusPaid
	}
	return PaymentStatusFailed
}
