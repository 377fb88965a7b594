// Package notifier pushes order facts to live websocket connections.
// Delivery is at-most-once and best-effort: a room with no members drops
// the fact silently, a stuck connection is evicted rather than awaited.
// Authoritative state always lives in storage, never here.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
	"go.uber.org/zap"
)

func RestaurantRoom(restaurantID string) string {
	return fmt.Sprintf("restaurant_%s", restaurantID)
}

func UserRoom(userID string) string {
	return fmt.Sprintf("user_%s", userID)
}

type message struct {
	room    string
	payload []byte
}

type joinRequest struct {
	sub  *subscriber
	room string
}

type Hub struct {
	logger *zap.Logger

	unregister chan *subscriber
	joins      chan joinRequest
	publishes  chan message

	rooms map[string]map[*subscriber]bool
	done  chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		unregister: make(chan *subscriber),
		joins:      make(chan joinRequest),
		publishes:  make(chan message, 64),
		rooms:      make(map[string]map[*subscriber]bool),
		done:       make(chan struct{}),
	}
}

// Run owns the room registry until ctx is cancelled, then closes every
// subscriber send channel.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case sub := <-h.unregister:
			h.evict(sub)
		case join := <-h.joins:
			set, ok := h.rooms[join.room]
			if !ok {
				set = make(map[*subscriber]bool)
				h.rooms[join.room] = set
			}
			set[join.sub] = true
			join.sub.rooms[join.room] = true
		case msg := <-h.publishes:
			set, ok := h.rooms[msg.room]
			if !ok {
				continue
			}
			for sub := range set {
				select {
				case sub.send <- msg.payload:
				default:
					// slow consumer, drop the connection rather than block
					h.evict(sub)
				}
			}
		case <-ctx.Done():
			for _, set := range h.rooms {
				for sub := range set {
					if !sub.closed {
						close(sub.send)
						sub.closed = true
					}
				}
			}
			return nil
		}
	}
}

func (h *Hub) evict(sub *subscriber) {
	for room := range sub.rooms {
		if set, ok := h.rooms[room]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	if !sub.closed {
		close(sub.send)
		sub.closed = true
	}
}

type newOrderMessage struct {
	Type      string       `json:"type"`
	Data      orderPayload `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}

type orderPayload struct {
	OrderID       string          `json:"orderId"`
	RestaurantID  string          `json:"restaurantId"`
	UserID        string          `json:"userId"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Amount        decimal.Decimal `json:"amount"`
}

type statusUpdateMessage struct {
	Type               string    `json:"type"`
	OrderID            string    `json:"orderId"`
	Status             string    `json:"status"`
	PreviousStatus     string    `json:"previousStatus"`
	PaymentStatus      string    `json:"paymentStatus"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// OrderCreated publishes a new-order message to the owning restaurant's
// room. Implements port.Notifier.
func (h *Hub) OrderCreated(order *domain.Order) {
	h.publish(RestaurantRoom(order.RestaurantID), newOrderMessage{
		Type: "new-order",
		Data: orderPayload{
			OrderID:       order.ID,
			RestaurantID:  order.RestaurantID,
			UserID:        order.UserID,
			Status:        string(order.Status),
			PaymentStatus: string(order.PaymentStatus),
			Amount:        order.Amount,
		},
		Timestamp: time.Now(),
	})
}

// OrderStatusChanged publishes an order-status-updated message to the
// customer's room.
func (h *Hub) OrderStatusChanged(change domain.StatusChange) {
	h.publish(UserRoom(change.UserID), statusUpdateMessage{
		Type:               "order-status-updated",
		OrderID:            change.OrderID,
		Status:             string(change.Status),
		PreviousStatus:     string(change.PreviousStatus),
		PaymentStatus:      string(change.PaymentStatus),
		CancellationReason: change.CancellationReason,
		Timestamp:          time.Now(),
	})
}

func (h *Hub) publish(room string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal notification", zap.Error(err))
		return
	}

	select {
	case h.publishes <- message{room: room, payload: body}:
	default:
		// backpressure on the fan-out never reaches a state mutation
		h.logger.Warn("notification dropped, publish queue full", zap.String("room", room))
	}
}
