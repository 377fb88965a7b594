package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
	"go.uber.org/zap"
)

// opTimeout bounds every mutating storage call. A timed-out call surfaces
// as domain.ErrDependencyUnavailable and is retried by the caller or the
// message transport.
const opTimeout = 5 * time.Second

type Service struct {
	repo     port.Repository
	notifier port.Notifier
	logger   *zap.Logger
}

func NewService(repo port.Repository, notifier port.Notifier, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}, nil
}

func (s *Service) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.RestaurantID == "" || order.UserID == "" {
		return nil, domain.ErrValidation
	}
	if order.Amount.Cmp(decimal.Zero) <= 0 {
		return nil, domain.ErrValidation
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Status = domain.OrderStatusPending
	order.PaymentStatus = domain.PaymentStatusUnpaid
	order.CancellationReason = ""
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrConflictingData) {
			return nil, err
		}
		s.logger.Error("Create order", zap.Error(err))
		return nil, err
	}

	s.notifier.OrderCreated(created)

	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.ReadOrder(ctx, orderID)
}

func (s *Service) ListRestaurantOrders(ctx context.Context, restaurantID string) ([]*domain.Order, error) {
	list, err := s.repo.ListOrdersByRestaurant(ctx, restaurantID)
	if err != nil {
		s.logger.Error("List orders for restaurant", zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ApplyStatusTransition moves the order along the fulfillment table under
// an optimistic version check. Losers of a concurrent race get
// domain.ErrConcurrentModification and may retry with fresh state.
func (s *Service) ApplyStatusTransition(ctx context.Context, orderID string,
	newStatus domain.OrderStatus, cancellationReason string) (*domain.Order, error) {
	if newStatus == domain.OrderStatusCancelled && strings.TrimSpace(cancellationReason) == "" {
		return nil, domain.ErrCancellationReasonRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, domain.ErrInvalidTransition
	}

	previous := order.Status
	order.Status = newStatus
	if newStatus == domain.OrderStatusCancelled {
		order.CancellationReason = cancellationReason
	}
	order.UpdatedAt = time.Now()

	updated, err := s.repo.UpdateOrder(ctx, order)
	if err != nil {
		if !errors.Is(err, domain.ErrConcurrentModification) {
			s.logger.Error("Update order status", zap.Error(err))
		}
		return nil, err
	}

	s.notifyChange(updated, previous)

	// Delivery may land after payment confirmation. The paid-event path
	// runs the same check, ledger idempotency keeps the credit single.
	if updated.Settled() {
		s.settleOrder(ctx, updated)
	}

	return updated, nil
}

// ApplyPaymentStatus sets the order's payment state, idempotent per
// eventRef. Redelivery of an applied event is a no-op that still re-runs
// the settlement check, so a credit lost to a transient failure is healed
// by the next delivery.
func (s *Service) ApplyPaymentStatus(ctx context.Context, orderID string,
	status domain.PaymentStatus, eventRef string) (*domain.Order, error) {
	if eventRef == "" {
		return nil, domain.ErrValidation
	}
	if status != domain.PaymentStatusPaid && status != domain.PaymentStatusFailed {
		return nil, domain.ErrValidation
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var previous domain.OrderStatus
	order, err := s.repo.ApplyOrderPayment(ctx, orderID, eventRef, func(o *domain.Order) error {
		previous = o.Status
		o.PaymentStatus = status
		o.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEventAlreadyApplied) {
			s.logger.Debug("Payment event already applied",
				zap.String("order", orderID), zap.String("event", eventRef))
			if order != nil && order.Settled() {
				s.settleOrder(ctx, order)
			}
			return order, nil
		}
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, err
		}
		s.logger.Error("Apply payment status", zap.Error(err))
		return nil, err
	}

	s.notifyChange(order, previous)

	if order.Settled() {
		s.settleOrder(ctx, order)
	}

	return order, nil
}

// CreditWallet appends a ledger entry and bumps the restaurant balance.
// Safe to call any number of times for the same (restaurant, order) pair.
func (s *Service) CreditWallet(ctx context.Context, restaurantID string, orderID string,
	amount decimal.Decimal, description string) (*domain.WalletCredit, error) {
	if restaurantID == "" || orderID == "" {
		return nil, domain.ErrValidation
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return nil, domain.ErrValidation
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	credit, err := s.repo.CreditWallet(ctx, &domain.LedgerEntry{
		RestaurantID: restaurantID,
		OrderID:      orderID,
		Amount:       amount,
		Description:  description,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		s.logger.Error("Credit wallet", zap.Error(err))
		return nil, err
	}

	if !credit.Applied {
		s.logger.Debug("Wallet already credited for order",
			zap.String("restaurant", restaurantID), zap.String("order", orderID))
	}

	return credit, nil
}

func (s *Service) GetWallet(ctx context.Context, restaurantID string) (*domain.Wallet, error) {
	if restaurantID == "" {
		return nil, domain.ErrValidation
	}
	return s.repo.ReadWallet(ctx, restaurantID)
}

func (s *Service) ListLedgerEntries(ctx context.Context, restaurantID string) ([]*domain.LedgerEntry, error) {
	if restaurantID == "" {
		return nil, domain.ErrValidation
	}
	return s.repo.ListLedgerEntries(ctx, restaurantID)
}

// settleOrder fires the wallet credit for a delivered and paid order. The
// credit is idempotent, so both the delivery path and the payment path may
// call this without coordination. Failure is logged, never propagated: the
// persisted order state stands and a payment-event redelivery retries the
// credit.
func (s *Service) settleOrder(ctx context.Context, order *domain.Order) {
	_, err := s.CreditWallet(ctx, order.RestaurantID, order.ID, order.Amount,
		fmt.Sprintf("settlement for order %s", order.ID))
	if err != nil {
		s.logger.Error("Settle order",
			zap.String("order", order.ID),
			zap.String("restaurant", order.RestaurantID),
			zap.Error(err))
	}
}

func (s *Service) notifyChange(order *domain.Order, previous domain.OrderStatus) {
	s.notifier.OrderStatusChanged(domain.StatusChange{
		OrderID:            order.ID,
		UserID:             order.UserID,
		RestaurantID:       order.RestaurantID,
		PreviousStatus:     previous,
		Status:             order.Status,
		PaymentStatus:      order.PaymentStatus,
		CancellationReason: order.CancellationReason,
	})
}
