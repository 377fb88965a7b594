package notifier

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/quickbites/orderhub/internal/core/port"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscriber struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]bool
	closed bool
}

// joinFrame is the client-to-server room subscription request.
type joinFrame struct {
	Action       string `json:"action"`
	RestaurantID string `json:"restaurantId,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

const (
	actionJoinRestaurant = "join-restaurant"
	actionJoinUserOrders = "join-user-orders"
)

// ServeWS upgrades the request and ties the connection's room membership
// to its lifetime. Joins are checked against the caller identity: a
// restaurant may only watch its own room, a customer theirs.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, identity *port.TokenPayload) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 32),
		rooms: make(map[string]bool),
	}

	go sub.writePump()
	sub.readPump(identity)
}

func (s *subscriber) readPump(identity *port.TokenPayload) {
	defer func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		_ = s.conn.Close()
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		frame := joinFrame{}
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.hub.logger.Debug("unreadable websocket frame", zap.Error(err))
			continue
		}

		room, ok := s.roomFor(frame, identity)
		if !ok {
			s.hub.logger.Debug("rejected join request",
				zap.String("action", frame.Action), zap.String("caller", identity.UserID))
			continue
		}

		select {
		case s.hub.joins <- joinRequest{sub: s, room: room}:
		case <-s.hub.done:
			return
		}
	}
}

func (s *subscriber) roomFor(frame joinFrame, identity *port.TokenPayload) (string, bool) {
	switch frame.Action {
	case actionJoinRestaurant:
		if identity.Role != port.RoleRestaurant || frame.RestaurantID != identity.RestaurantID {
			return "", false
		}
		return RestaurantRoom(frame.RestaurantID), true
	case actionJoinUserOrders:
		if frame.UserID != identity.UserID {
			return "", false
		}
		return UserRoom(frame.UserID), true
	default:
		return "", false
	}
}

func (s *subscriber) writePump() {
	defer func() { _ = s.conn.Close() }()
	for msg := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
