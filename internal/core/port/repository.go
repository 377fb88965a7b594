package port

import (
	"context"

	"github.com/quickbites/orderhub/internal/core/domain"
)

// UpdateOrderFn mutates an order inside the repository's per-order
// critical section.
type UpdateOrderFn func(*domain.Order) error

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// Order
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateOrder persists the order with an optimistic version check:
	// it fails with domain.ErrConcurrentModification when the stored
	// version no longer matches order.Version.
	UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error)

	// ApplyOrderPayment records eventRef in the applied-event set and runs
	// updateFn on the order under the same transaction. When eventRef was
	// applied before, it returns the current order together with
	// domain.ErrEventAlreadyApplied and changes nothing.
	ApplyOrderPayment(ctx context.Context, orderID string, eventRef string, updateFn UpdateOrderFn) (*domain.Order, error)
	HasAppliedEvent(ctx context.Context, orderID string, eventRef string) (bool, error)

	// Wallet
	// CreditWallet appends the entry and increments the restaurant
	// balance atomically. A pair that already has an entry is a no-op
	// success with Applied=false.
	CreditWallet(ctx context.Context, entry *domain.LedgerEntry) (*domain.WalletCredit, error)
	HasLedgerEntry(ctx context.Context, restaurantID string, orderID string) (bool, error)
	ReadWallet(ctx context.Context, restaurantID string) (*domain.Wallet, error)
	ListLedgerEntries(ctx context.Context, restaurantID string) ([]*domain.LedgerEntry, error)
}
