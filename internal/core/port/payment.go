package port

import (
	"context"

	"github.com/quickbites/orderhub/internal/core/domain"
)

// PaymentApplier is the narrow surface the payment event consumer needs
// from the core service.
//
//go:generate mockgen -source=payment.go -destination=mock/payment.go -package=mock
type PaymentApplier interface {
	ApplyPaymentStatus(ctx context.Context, orderID string,
		status domain.PaymentStatus, eventRef string) (*domain.Order, error)
}
