package consumer

import (
	"context"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port/mock"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(ack amqp091.Acknowledger, routingKey, body string) amqp091.Delivery {
	return amqp091.Delivery{
		Acknowledger: ack,
		RoutingKey:   routingKey,
		Body:         []byte(body),
	}
}

func TestDecodePaymentEvent(t *testing.T) {
	tests := []struct {
		name       string
		routingKey string
		body       string
		expError   error
		expType    domain.PaymentEventType
	}{
		{
			name:       "Completed event",
			routingKey: routingKeyCompleted,
			body:       `{"eventId":"evt-1","orderId":"order-1","amount":42.5}`,
			expType:    domain.PaymentEventCompleted,
		},
		{
			name:       "Failed event",
			routingKey: routingKeyFailed,
			body:       `{"eventId":"evt-2","orderId":"order-1","reason":"card declined"}`,
			expType:    domain.PaymentEventFailed,
		},
		{
			name:       "Missing identifiers",
			routingKey: routingKeyCompleted,
			body:       `{"amount":42.5}`,
			expError:   domain.ErrValidation,
		},
		{
			name:       "Unreadable body",
			routingKey: routingKeyFailed,
			body:       `not json`,
			expError:   domain.ErrValidation,
		},
		{
			name:       "Unknown routing key",
			routingKey: "payment.refunded",
			body:       `{"eventId":"evt-3","orderId":"order-1"}`,
			expError:   domain.ErrValidation,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			event, err := decodePaymentEvent(test.routingKey, []byte(test.body))
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expType, event.Type)
			assert.NotEmpty(t, event.EventID)
			assert.NotEmpty(t, event.OrderID)
		})
	}
}

func TestDecodePaymentEvent_Amount(t *testing.T) {
	event, err := decodePaymentEvent(routingKeyCompleted,
		[]byte(`{"eventId":"evt-1","orderId":"order-1","amount":19.99}`))
	assert.NoError(t, err)
	assert.Zero(t, decimal.MustParse("19.99").Cmp(event.Amount))
}

func TestPaymentConsumer_Handle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	completedBody := `{"eventId":"evt-1","orderId":"order-1","amount":10}`

	tests := []struct {
		name       string
		routingKey string
		body       string
		mock       func(applier *mock.MockPaymentApplier)
		expAcked   int
		expNacked  int
		expRequeue bool
	}{
		{
			name:       "Applied event is acked",
			routingKey: routingKeyCompleted,
			body:       completedBody,
			mock: func(applier *mock.MockPaymentApplier) {
				applier.EXPECT().
					ApplyPaymentStatus(gomock.Any(), "order-1", domain.PaymentStatusPaid, "evt-1").
					Return(&domain.Order{}, nil)
			},
			expAcked: 1,
		},
		{
			name:       "Failed event maps to failed status",
			routingKey: routingKeyFailed,
			body:       `{"eventId":"evt-2","orderId":"order-1"}`,
			mock: func(applier *mock.MockPaymentApplier) {
				applier.EXPECT().
					ApplyPaymentStatus(gomock.Any(), "order-1", domain.PaymentStatusFailed, "evt-2").
					Return(&domain.Order{}, nil)
			},
			expAcked: 1,
		},
		{
			name:       "Malformed payload is dropped",
			routingKey: routingKeyCompleted,
			body:       `{"amount":10}`,
			mock:       func(applier *mock.MockPaymentApplier) {},
			expAcked:   1,
		},
		{
			name:       "Unknown order is poison, not retried",
			routingKey: routingKeyCompleted,
			body:       completedBody,
			mock: func(applier *mock.MockPaymentApplier) {
				applier.EXPECT().
					ApplyPaymentStatus(gomock.Any(), "order-1", domain.PaymentStatusPaid, "evt-1").
					Return(nil, domain.ErrDataNotFound)
			},
			expAcked: 1,
		},
		{
			name:       "Transient failure is requeued",
			routingKey: routingKeyCompleted,
			body:       completedBody,
			mock: func(applier *mock.MockPaymentApplier) {
				applier.EXPECT().
					ApplyPaymentStatus(gomock.Any(), "order-1", domain.PaymentStatusPaid, "evt-1").
					Return(nil, domain.ErrDependencyUnavailable)
			},
			expNacked:  1,
			expRequeue: true,
		},
		{
			name:       "Lost race is requeued",
			routingKey: routingKeyCompleted,
			body:       completedBody,
			mock: func(applier *mock.MockPaymentApplier) {
				applier.EXPECT().
					ApplyPaymentStatus(gomock.Any(), "order-1", domain.PaymentStatusPaid, "evt-1").
					Return(nil, domain.ErrConcurrentModification)
			},
			expNacked:  1,
			expRequeue: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			applier := mock.NewMockPaymentApplier(mockCtrl)
			test.mock(applier)

			c := &PaymentConsumer{applier: applier, logger: zap.NewNop()}
			ack := &fakeAcknowledger{}

			c.handle(context.Background(), delivery(ack, test.routingKey, test.body))

			assert.Equal(t, test.expAcked, ack.acked)
			assert.Equal(t, test.expNacked, ack.nacked)
			assert.Equal(t, test.expRequeue, ack.requeue)
		})
	}
}
