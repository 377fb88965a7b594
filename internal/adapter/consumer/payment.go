// Package consumer ingests payment-outcome events from RabbitMQ and
// applies them to order payment state. Delivery is at-least-once:
// acknowledgement happens only after the state update succeeds,
// redelivery of an applied event is absorbed by idempotency downstream.
package consumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickbites/orderhub/internal/adapter/config"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	routingKeyCompleted = "payment.completed"
	routingKeyFailed    = "payment.failed"

	prefetchCount = 32
)

type PaymentConsumer struct {
	conn    *amqp091.Connection
	queue   string
	applier port.PaymentApplier
	logger  *zap.Logger
}

func NewPaymentConsumer(cfg *config.AMQP, applier port.PaymentApplier,
	logger *zap.Logger) (*PaymentConsumer, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{routingKeyCompleted, routingKeyFailed} {
		if err := ch.QueueBind(cfg.Queue, key, cfg.Exchange, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind queue: %w", err)
		}
	}

	return &PaymentConsumer{
		conn:    conn,
		queue:   cfg.Queue,
		applier: applier,
		logger:  logger,
	}, nil
}

// Start consumes until ctx is cancelled. Events run concurrently, one
// task per delivery; per-order exclusion lives in the repository, not
// here.
func (c *PaymentConsumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("consume queue: %w", err)
	}

	go func() {
		<-ctx.Done()
		ch.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Info("consumer channel closed")
				return nil
			}
			go c.handle(ctx, msg)
		}
	}
}

func (c *PaymentConsumer) Close() error {
	return c.conn.Close()
}

// handle classifies each outcome: ack on success and on permanent
// failure (malformed payload, unknown order), nack with requeue on
// transient failure so the broker redelivers.
func (c *PaymentConsumer) handle(ctx context.Context, msg amqp091.Delivery) {
	event, err := decodePaymentEvent(msg.RoutingKey, msg.Body)
	if err != nil {
		c.logger.Warn("dropping malformed payment event",
			zap.String("routingKey", msg.RoutingKey), zap.Error(err))
		_ = msg.Ack(false)
		return
	}

	_, err = c.applier.ApplyPaymentStatus(ctx, event.OrderID, event.Type.PaymentStatus(), event.EventID)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, domain.ErrDataNotFound):
		c.logger.Warn("payment event for unknown order",
			zap.String("order", event.OrderID), zap.String("event", event.EventID))
		_ = msg.Ack(false)
	case errors.Is(err, domain.ErrValidation):
		c.logger.Warn("payment event rejected",
			zap.String("order", event.OrderID), zap.Error(err))
		_ = msg.Ack(false)
	default:
		c.logger.Error("payment event left for redelivery",
			zap.String("order", event.OrderID), zap.String("event", event.EventID), zap.Error(err))
		_ = msg.Nack(false, true)
	}
}
