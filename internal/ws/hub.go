package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks connected clients by user and pushes payment status events to
// them. A user may hold several connections (phone plus web checkout tab).
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[c.userID] = conns
	}
	conns[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.userID)
		}
	}
	close(c.send)
}

// NotifyPaymentStatus pushes an event to every connection of one user. Slow
// consumers are dropped rather than blocking the payment path.
func (h *Hub) NotifyPaymentStatus(userID uint, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] marshal event: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			log.Printf("[WS] dropping slow client user_id=%d", userID)
		}
	}
}

// Client is one websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}
