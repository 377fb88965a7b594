package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port/mock"
	"github.com/quickbites/orderhub/internal/core/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type prepareMocks func(repo *mock.MockRepository, notifier *mock.MockNotifier)

func testOrder(status domain.OrderStatus, payment domain.PaymentStatus) *domain.Order {
	return &domain.Order{
		ID:            "6cd21f8a-1b9f-4c44-94d5-0de7be8bb46a",
		RestaurantID:  "rest-1",
		UserID:        "user-1",
		Status:        status,
		PaymentStatus: payment,
		Amount:        decimal.MustParse("42.50"),
		Version:       1,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestService_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	logger, _ := zap.NewProduction()

	tests := []struct {
		name     string
		order    domain.Order
		mock     prepareMocks
		expError error
	}{
		{
			name:  "Create good order",
			order: domain.Order{RestaurantID: "rest-1", UserID: "user-1", Amount: decimal.MustParse("42.50")},
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusPending, o.Status)
						assert.Equal(t, domain.PaymentStatusUnpaid, o.PaymentStatus)
						assert.NotEmpty(t, o.ID)
						return o, nil
					})
				notifier.EXPECT().OrderCreated(gomock.Any())
			},
			expError: nil,
		},
		{
			name:     "Missing restaurant",
			order:    domain.Order{UserID: "user-1", Amount: decimal.MustParse("42.50")},
			mock:     func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError: domain.ErrValidation,
		},
		{
			name:     "Zero amount",
			order:    domain.Order{RestaurantID: "rest-1", UserID: "user-1"},
			mock:     func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError: domain.ErrValidation,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			notifier := mock.NewMockNotifier(mockCtrl)
			test.mock(repo, notifier)

			s, err := service.NewService(repo, notifier, logger)
			assert.NoError(t, err)

			_, err = s.CreateOrder(context.Background(), &test.order)
			assert.ErrorIs(t, err, test.expError)
		})
	}
}

func TestService_ApplyStatusTransition(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	logger, _ := zap.NewProduction()

	tests := []struct {
		name      string
		newStatus domain.OrderStatus
		reason    string
		mock      prepareMocks
		expError  error
	}{
		{
			name:      "Confirm pending order",
			newStatus: domain.OrderStatusConfirmed,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusPending, domain.PaymentStatusUnpaid)
				repo.EXPECT().ReadOrder(gomock.Any(), order.ID).Return(order, nil)
				repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusConfirmed, o.Status)
						o.Version++
						return o, nil
					})
				notifier.EXPECT().OrderStatusChanged(gomock.Any()).
					Do(func(change domain.StatusChange) {
						assert.Equal(t, domain.OrderStatusPending, change.PreviousStatus)
						assert.Equal(t, domain.OrderStatusConfirmed, change.Status)
					})
			},
			expError: nil,
		},
		{
			name:      "Skip ahead is rejected",
			newStatus: domain.OrderStatusReady,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusPending, domain.PaymentStatusUnpaid)
				repo.EXPECT().ReadOrder(gomock.Any(), order.ID).Return(order, nil)
			},
			expError: domain.ErrInvalidTransition,
		},
		{
			name:      "Terminal order rejects transition",
			newStatus: domain.OrderStatusConfirmed,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusCancelled, domain.PaymentStatusUnpaid)
				repo.EXPECT().ReadOrder(gomock.Any(), order.ID).Return(order, nil)
			},
			expError: domain.ErrInvalidTransition,
		},
		{
			name:      "Cancel without reason",
			newStatus: domain.OrderStatusCancelled,
			reason:    "   ",
			mock:      func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError:  domain.ErrCancellationReasonRequired,
		},
		{
			name:      "Cancel with reason",
			newStatus: domain.OrderStatusCancelled,
			reason:    "customer changed their mind",
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusPreparing, domain.PaymentStatusUnpaid)
				repo.EXPECT().ReadOrder(gomock.Any(), order.ID).Return(order, nil)
				repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusCancelled, o.Status)
						assert.Equal(t, "customer changed their mind", o.CancellationReason)
						return o, nil
					})
				notifier.EXPECT().OrderStatusChanged(gomock.Any())
			},
			expError: nil,
		},
		{
			name:      "Order not found",
			newStatus: domain.OrderStatusConfirmed,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				repo.EXPECT().ReadOrder(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDataNotFound)
			},
			expError: domain.ErrDataNotFound,
		},
		{
			name:      "Lost concurrent race",
			newStatus: domain.OrderStatusConfirmed,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusPending, domain.PaymentStatusUnpaid)
				repo.EXPECT().ReadOrder(gomock.Any(), order.ID).Return(order, nil)
				repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrConcurrentModification)
			},
			expError: domain.ErrConcurrentModification,
		},
		{
			name:      "Delivery of paid order credits the wallet",
			newStatus: domain.OrderStatusDelivered,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusReady, domain.PaymentStatusPaid)
				repo.EXPECT().ReadOrder(gomock.Any(), order.ID).Return(order, nil)
				repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
				notifier.EXPECT().OrderStatusChanged(gomock.Any())
				repo.EXPECT().CreditWallet(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, entry *domain.LedgerEntry) (*domain.WalletCredit, error) {
						assert.Equal(t, order.RestaurantID, entry.RestaurantID)
						assert.Equal(t, order.ID, entry.OrderID)
						assert.Equal(t, order.Amount, entry.Amount)
						return &domain.WalletCredit{Entry: *entry, Balance: entry.Amount, Applied: true}, nil
					})
			},
			expError: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			notifier := mock.NewMockNotifier(mockCtrl)
			test.mock(repo, notifier)

			s, err := service.NewService(repo, notifier, logger)
			assert.NoError(t, err)

			orderID := testOrder(domain.OrderStatusPending, domain.PaymentStatusUnpaid).ID
			_, err = s.ApplyStatusTransition(context.Background(), orderID, test.newStatus, test.reason)
			assert.ErrorIs(t, err, test.expError)
		})
	}
}

func TestService_ApplyPaymentStatus(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	logger, _ := zap.NewProduction()

	const eventRef = "evt-001"

	tests := []struct {
		name     string
		status   domain.PaymentStatus
		eventRef string
		mock     prepareMocks
		expError error
	}{
		{
			name:     "Mark pending order paid",
			status:   domain.PaymentStatusPaid,
			eventRef: eventRef,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusPending, domain.PaymentStatusUnpaid)
				repo.EXPECT().ApplyOrderPayment(gomock.Any(), order.ID, eventRef, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ string, updateFn func(*domain.Order) error) (*domain.Order, error) {
						assert.NoError(t, updateFn(order))
						return order, nil
					})
				notifier.EXPECT().OrderStatusChanged(gomock.Any()).
					Do(func(change domain.StatusChange) {
						assert.Equal(t, domain.PaymentStatusPaid, change.PaymentStatus)
					})
			},
			expError: nil,
		},
		{
			name:     "Payment after delivery credits the wallet",
			status:   domain.PaymentStatusPaid,
			eventRef: eventRef,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusDelivered, domain.PaymentStatusUnpaid)
				repo.EXPECT().ApplyOrderPayment(gomock.Any(), order.ID, eventRef, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ string, updateFn func(*domain.Order) error) (*domain.Order, error) {
						assert.NoError(t, updateFn(order))
						return order, nil
					})
				notifier.EXPECT().OrderStatusChanged(gomock.Any())
				repo.EXPECT().CreditWallet(gomock.Any(), gomock.Any()).
					Return(&domain.WalletCredit{Applied: true}, nil)
			},
			expError: nil,
		},
		{
			name:     "Duplicate event is a no-op",
			status:   domain.PaymentStatusPaid,
			eventRef: eventRef,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusPending, domain.PaymentStatusPaid)
				repo.EXPECT().ApplyOrderPayment(gomock.Any(), order.ID, eventRef, gomock.Any()).
					Return(order, domain.ErrEventAlreadyApplied)
			},
			expError: nil,
		},
		{
			name:     "Duplicate event still heals a missing credit",
			status:   domain.PaymentStatusPaid,
			eventRef: eventRef,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				order := testOrder(domain.OrderStatusDelivered, domain.PaymentStatusPaid)
				repo.EXPECT().ApplyOrderPayment(gomock.Any(), order.ID, eventRef, gomock.Any()).
					Return(order, domain.ErrEventAlreadyApplied)
				repo.EXPECT().CreditWallet(gomock.Any(), gomock.Any()).
					Return(&domain.WalletCredit{Applied: false}, nil)
			},
			expError: nil,
		},
		{
			name:     "Empty event reference",
			status:   domain.PaymentStatusPaid,
			eventRef: "",
			mock:     func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError: domain.ErrValidation,
		},
		{
			name:     "Unpaid is not an event outcome",
			status:   domain.PaymentStatusUnpaid,
			eventRef: eventRef,
			mock:     func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError: domain.ErrValidation,
		},
		{
			name:     "Order not found",
			status:   domain.PaymentStatusFailed,
			eventRef: eventRef,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				repo.EXPECT().ApplyOrderPayment(gomock.Any(), gomock.Any(), eventRef, gomock.Any()).
					Return(nil, domain.ErrDataNotFound)
			},
			expError: domain.ErrDataNotFound,
		},
		{
			name:     "Transient storage failure propagates",
			status:   domain.PaymentStatusPaid,
			eventRef: eventRef,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				repo.EXPECT().ApplyOrderPayment(gomock.Any(), gomock.Any(), eventRef, gomock.Any()).
					Return(nil, domain.ErrDependencyUnavailable)
			},
			expError: domain.ErrDependencyUnavailable,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			notifier := mock.NewMockNotifier(mockCtrl)
			test.mock(repo, notifier)

			s, err := service.NewService(repo, notifier, logger)
			assert.NoError(t, err)

			orderID := testOrder(domain.OrderStatusPending, domain.PaymentStatusUnpaid).ID
			_, err = s.ApplyPaymentStatus(context.Background(), orderID, test.status, test.eventRef)
			assert.ErrorIs(t, err, test.expError)
		})
	}
}

func TestService_CreditWallet(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	logger, _ := zap.NewProduction()

	amount := decimal.MustParse("15.00")

	tests := []struct {
		name         string
		restaurantID string
		orderID      string
		amount       decimal.Decimal
		mock         prepareMocks
		expError     error
		expApplied   bool
	}{
		{
			name:         "First credit applies",
			restaurantID: "rest-1",
			orderID:      "order-1",
			amount:       amount,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				repo.EXPECT().CreditWallet(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, entry *domain.LedgerEntry) (*domain.WalletCredit, error) {
						return &domain.WalletCredit{Entry: *entry, Balance: entry.Amount, Applied: true}, nil
					})
			},
			expApplied: true,
		},
		{
			name:         "Repeat credit is a no-op success",
			restaurantID: "rest-1",
			orderID:      "order-1",
			amount:       amount,
			mock: func(repo *mock.MockRepository, notifier *mock.MockNotifier) {
				repo.EXPECT().CreditWallet(gomock.Any(), gomock.Any()).
					Return(&domain.WalletCredit{Balance: amount, Applied: false}, nil)
			},
			expApplied: false,
		},
		{
			name:         "Empty restaurant id",
			restaurantID: "",
			orderID:      "order-1",
			amount:       amount,
			mock:         func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError:     domain.ErrValidation,
		},
		{
			name:         "Non-positive amount",
			restaurantID: "rest-1",
			orderID:      "order-1",
			amount:       decimal.Zero,
			mock:         func(repo *mock.MockRepository, notifier *mock.MockNotifier) {},
			expError:     domain.ErrValidation,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			notifier := mock.NewMockNotifier(mockCtrl)
			test.mock(repo, notifier)

			s, err := service.NewService(repo, notifier, logger)
			assert.NoError(t, err)

			credit, err := s.CreditWallet(context.Background(), test.restaurantID, test.orderID, test.amount, "settlement")
			assert.ErrorIs(t, err, test.expError)
			if test.expError == nil {
				assert.Equal(t, test.expApplied, credit.Applied)
			}
		})
	}
}
