package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
)

// Payload shapes are tagged per routing key; an unrecognized key or a
// payload missing its identifiers is a validation failure, never trusted
// as a duck-typed body.

type completedPayload struct {
	EventID string  `json:"eventId"`
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount,omitempty"`
}

type failedPayload struct {
	EventID string `json:"eventId"`
	OrderID string `json:"orderId"`
	Reason  string `json:"reason,omitempty"`
}

func decodePaymentEvent(routingKey string, body []byte) (*domain.PaymentEvent, error) {
	switch routingKey {
	case routingKeyCompleted:
		payload := completedPayload{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if payload.EventID == "" || payload.OrderID == "" {
			return nil, fmt.Errorf("%w: completed event missing identifiers", domain.ErrValidation)
		}
		amount, err := decimal.NewFromFloat64(payload.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount", domain.ErrValidation)
		}
		return &domain.PaymentEvent{
			EventID: payload.EventID,
			Type:    domain.PaymentEventCompleted,
			OrderID: payload.OrderID,
			Amount:  amount,
		}, nil
	case routingKeyFailed:
		payload := failedPayload{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if payload.EventID == "" || payload.OrderID == "" {
			return nil, fmt.Errorf("%w: failed event missing identifiers", domain.ErrValidation)
		}
		return &domain.PaymentEvent{
			EventID: payload.EventID,
			Type:    domain.PaymentEventFailed,
			OrderID: payload.OrderID,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected routing key %q", domain.ErrValidation, routingKey)
	}
}
