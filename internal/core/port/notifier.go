package port

import "github.com/quickbites/orderhub/internal/core/domain"

// Notifier pushes order facts to live connections. Both calls are
// best-effort: they never block and never return an error, a fact with no
// live audience is dropped.
//
//go:generate mockgen -source=notifier.go -destination=mock/notifier.go -package=mock
type Notifier interface {
	OrderCreated(order *domain.Order)
	OrderStatusChanged(change domain.StatusChange)
}
