// Package memory is a mutex-guarded implementation of port.Repository.
// It backs local runs without postgres and the concurrency tests; it
// honors the same version-check and idempotency semantics as the
// postgres repository. One mutex guards all state, coarser than the
// per-restaurant row lock the postgres repository credits under.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
)

type Repository struct {
	mu sync.Mutex

	orders  map[string]*domain.Order
	applied map[string]map[string]bool                 // orderID -> eventRef set
	wallets map[string]decimal.Decimal                 // restaurantID -> balance
	entries map[string]map[string]*domain.LedgerEntry // restaurantID -> orderID -> entry
}

func NewRepository() *Repository {
	return &Repository{
		orders:  make(map[string]*domain.Order),
		applied: make(map[string]map[string]bool),
		wallets: make(map[string]decimal.Decimal),
		entries: make(map[string]map[string]*domain.LedgerEntry),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return nil, domain.ErrConflictingData
	}
	if order.Version == 0 {
		order.Version = 1
	}
	r.orders[order.ID] = cloneOrder(order)
	return cloneOrder(order), nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	if stored.Version != order.Version {
		return nil, domain.ErrConcurrentModification
	}

	updated := cloneOrder(order)
	updated.Version++
	r.orders[order.ID] = updated
	return cloneOrder(updated), nil
}

func (r *Repository) ListOrdersByRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.RestaurantID == restaurantID {
			list = append(list, cloneOrder(order))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r *Repository) ApplyOrderPayment(ctx context.Context, orderID string,
	eventRef string, updateFn port.UpdateOrderFn) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}

	if r.applied[orderID][eventRef] {
		return cloneOrder(order), domain.ErrEventAlreadyApplied
	}

	updated := cloneOrder(order)
	if err := updateFn(updated); err != nil {
		return nil, err
	}
	updated.Version++
	r.orders[orderID] = updated

	refs, ok := r.applied[orderID]
	if !ok {
		refs = make(map[string]bool)
		r.applied[orderID] = refs
	}
	refs[eventRef] = true

	return cloneOrder(updated), nil
}

func (r *Repository) HasAppliedEvent(ctx context.Context, orderID string, eventRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied[orderID][eventRef], nil
}

func (r *Repository) CreditWallet(ctx context.Context, entry *domain.LedgerEntry) (*domain.WalletCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byOrder, ok := r.entries[entry.RestaurantID]
	if !ok {
		byOrder = make(map[string]*domain.LedgerEntry)
		r.entries[entry.RestaurantID] = byOrder
	}

	if existing, ok := byOrder[entry.OrderID]; ok {
		return &domain.WalletCredit{
			Entry:   *existing,
			Balance: r.wallets[entry.RestaurantID],
			Applied: false,
		}, nil
	}

	stored := *entry
	byOrder[entry.OrderID] = &stored

	balance, err := r.wallets[entry.RestaurantID].Add(entry.Amount)
	if err != nil {
		return nil, domain.ErrInternal
	}
	r.wallets[entry.RestaurantID] = balance

	return &domain.WalletCredit{Entry: stored, Balance: balance, Applied: true}, nil
}

func (r *Repository) HasLedgerEntry(ctx context.Context, restaurantID string, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[restaurantID][orderID]
	return ok, nil
}

func (r *Repository) ReadWallet(ctx context.Context, restaurantID string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &domain.Wallet{RestaurantID: restaurantID, Balance: r.wallets[restaurantID]}, nil
}

func (r *Repository) ListLedgerEntries(ctx context.Context, restaurantID string) ([]*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*domain.LedgerEntry, 0)
	for _, entry := range r.entries[restaurantID] {
		e := *entry
		list = append(list, &e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}
