package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/adapter/storage/memory"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func seedOrder(t *testing.T, repo *memory.Repository, id string) *domain.Order {
	t.Helper()
	order, err := repo.CreateOrder(context.Background(), &domain.Order{
		ID:            id,
		RestaurantID:  "rest-1",
		UserID:        "user-1",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Amount:        decimal.MustParse("10.00"),
		CreatedAt:     time.Now(),
	})
	assert.NoError(t, err)
	return order
}

func TestRepository_UpdateOrder_VersionCheck(t *testing.T) {
	repo := memory.NewRepository()
	order := seedOrder(t, repo, "order-1")

	stale := *order

	order.Status = domain.OrderStatusConfirmed
	updated, err := repo.UpdateOrder(context.Background(), order)
	assert.NoError(t, err)
	assert.Equal(t, order.Version+1, updated.Version)

	stale.Status = domain.OrderStatusCancelled
	_, err = repo.UpdateOrder(context.Background(), &stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestRepository_UpdateOrder_ConcurrentSingleWinner(t *testing.T) {
	repo := memory.NewRepository()
	order := seedOrder(t, repo, "order-1")

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			copy := *order
			copy.Status = domain.OrderStatusConfirmed
			if _, err := repo.UpdateOrder(context.Background(), &copy); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrConcurrentModification)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestRepository_ApplyOrderPayment_Idempotent(t *testing.T) {
	repo := memory.NewRepository()
	order := seedOrder(t, repo, "order-1")

	markPaid := func(o *domain.Order) error {
		o.PaymentStatus = domain.PaymentStatusPaid
		return nil
	}

	updated, err := repo.ApplyOrderPayment(context.Background(), order.ID, "evt-1", markPaid)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)

	again, err := repo.ApplyOrderPayment(context.Background(), order.ID, "evt-1", markPaid)
	assert.ErrorIs(t, err, domain.ErrEventAlreadyApplied)
	assert.Equal(t, updated.Version, again.Version)

	applied, err := repo.HasAppliedEvent(context.Background(), order.ID, "evt-1")
	assert.NoError(t, err)
	assert.True(t, applied)
}

func TestRepository_ApplyOrderPayment_UnknownOrder(t *testing.T) {
	repo := memory.NewRepository()

	_, err := repo.ApplyOrderPayment(context.Background(), "ghost", "evt-1", func(o *domain.Order) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrDataNotFound)

	applied, err := repo.HasAppliedEvent(context.Background(), "ghost", "evt-1")
	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestRepository_CreditWallet_IdempotentUnderConcurrency(t *testing.T) {
	repo := memory.NewRepository()
	amount := decimal.MustParse("25.00")

	const calls = 20
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreditWallet(context.Background(), &domain.LedgerEntry{
				RestaurantID: "rest-1",
				OrderID:      "order-1",
				Amount:       amount,
				CreatedAt:    time.Now(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := repo.ListLedgerEntries(context.Background(), "rest-1")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	wallet, err := repo.ReadWallet(context.Background(), "rest-1")
	assert.NoError(t, err)
	assert.Zero(t, amount.Cmp(wallet.Balance))
}

func TestRepository_CreditWallet_ConcurrentDistinctOrders(t *testing.T) {
	repo := memory.NewRepository()
	amount := decimal.MustParse("3.50")

	const orders = 40
	var wg sync.WaitGroup
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			credit, err := repo.CreditWallet(context.Background(), &domain.LedgerEntry{
				RestaurantID: "rest-1",
				OrderID:      fmt.Sprintf("order-%d", n),
				Amount:       amount,
				CreatedAt:    time.Now(),
			})
			assert.NoError(t, err)
			assert.True(t, credit.Applied)
		}(i)
	}
	wg.Wait()

	expected, err := amount.Mul(decimal.MustNew(orders, 0))
	assert.NoError(t, err)

	wallet, err := repo.ReadWallet(context.Background(), "rest-1")
	assert.NoError(t, err)
	assert.Zero(t, expected.Cmp(wallet.Balance))

	entries, err := repo.ListLedgerEntries(context.Background(), "rest-1")
	assert.NoError(t, err)
	assert.Len(t, entries, orders)
}

func TestRepository_ReadWallet_NeverCredited(t *testing.T) {
	repo := memory.NewRepository()

	wallet, err := repo.ReadWallet(context.Background(), "rest-unknown")
	assert.NoError(t, err)
	assert.Zero(t, decimal.Zero.Cmp(wallet.Balance))
}
