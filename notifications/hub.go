package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Notification types the frontend understands.
const (
	TypePredictionSaved   = "PREDICTION_SAVED"
	TypePredictionUpdated = "PREDICTION_UPDATED"
	TypePrivateLeagueJoin = "PRIVATE_LEAGUE_JOINED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// Client is one websocket connection. A user with several tabs open has
// several clients in the same room.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
}

func (c *Client) UserID() uuid.UUID { return c.userID }

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// trySend never blocks; a slow client just loses the toast.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[uuid.UUID]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger.With("component", "notifications"),
	}
}

// Run processes registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.userID]; !ok {
				h.rooms[client.userID] = make(map[*Client]bool)
			}
			h.rooms[client.userID][client] = true
			h.logger.Debug("client registered", "user_id", client.userID, "connections", len(h.rooms[client.userID]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.userID]; ok {
				if _, ok := room[client]; ok {
					client.close()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.userID)
					}
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for userID, room := range h.rooms {
				for client := range room {
					client.close()
				}
				delete(h.rooms, userID)
			}
			h.mu.Unlock()
			h.logger.Info("notification hub stopped")
			return
		}
	}
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Connections reports how many sockets a user currently has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Notify pushes a message to every connection of userID and returns how many
// received it. Users without an open socket are skipped silently.
func (h *Hub) Notify(userID uuid.UUID, msgType string, payload interface{}) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[userID]
	if !ok {
		return 0
	}

	data, err := json.Marshal(Message{Type: msgType, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Error("failed to marshal notification", "type", msgType, "error", err)
		return 0
	}

	delivered := 0
	for client := range room {
		if client.trySend(data) {
			delivered++
		} else {
			h.logger.Warn("notification dropped", "user_id", userID, "type", msgType)
		}
	}
	return delivered
}

// ReadPump drains the socket; clients never send anything meaningful, but
// reading is required to process pongs and detect disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("websocket write failed", "user_id", c.userID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
