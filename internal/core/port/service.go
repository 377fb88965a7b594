package port

import (
	"context"

	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListRestaurantOrders(ctx context.Context, restaurantID string) ([]*domain.Order, error)

	ApplyStatusTransition(ctx context.Context, orderID string,
		newStatus domain.OrderStatus, cancellationReason string) (*domain.Order, error)
	ApplyPaymentStatus(ctx context.Context, orderID string,
		status domain.PaymentStatus, eventRef string) (*domain.Order, error)

	CreditWallet(ctx context.Context, restaurantID string, orderID string,
		amount decimal.Decimal, description string) (*domain.WalletCredit, error)
	GetWallet(ctx context.Context, restaurantID string) (*domain.Wallet, error)
	ListLedgerEntries(ctx context.Context, restaurantID string) ([]*domain.LedgerEntry, error)
}
