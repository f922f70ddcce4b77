package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/apex/log"

	"publicpulse/analytics"
	"publicpulse/metrics"
)

// Hub manages WebSocket connections and broadcasting
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages to clients
	broadcast chan []byte

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	// Statistics
	lastBroadcast    time.Time
	connectedClients int
}

// BroadcastMessage is the envelope every hub message goes out in.
type BroadcastMessage struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client] = true
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
			metrics.WebsocketClients.Set(float64(h.connectedClients))
			log.Infof("Client connected. Total clients: %d", h.connectedClients)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connectedClients = len(h.clients)
			}
			h.mutex.Unlock()
			metrics.WebsocketClients.Set(float64(h.connectedClients))
			log.Infof("Client disconnected. Total clients: %d", h.connectedClients)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
			metrics.WebsocketClients.Set(float64(h.connectedClients))
		}
	}
}

// BroadcastAnalytics pushes a fresh analytics snapshot to all connected
// clients. Wire it to the analytics store with Subscribe.
func (h *Hub) BroadcastAnalytics(snap analytics.Snapshot) {
	message := BroadcastMessage{
		Type:      "analytics",
		Data:      snap,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to marshal broadcast message: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
		h.mutex.Lock()
		h.lastBroadcast = time.Now()
		h.mutex.Unlock()
	default:
		log.Warn("Broadcast channel full, dropping analytics update")
	}
}

// GetStats returns current hub statistics
func (h *Hub) GetStats() (int, time.Time) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.connectedClients, h.lastBroadcast
}
