package handlers

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	ws "publicpulse/websocket"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// WebSocket upgrader
var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now
		return true
	},
}

// ListenAnalytics upgrades the connection and streams analytics snapshots.
func (h *WebSocketHandler) ListenAnalytics(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	log.Infof("WebSocket connection established from %s", c.ClientIP())
}

// Health returns the hub statistics.
func (h *WebSocketHandler) Health(c *gin.Context) {
	connectedClients, lastBroadcast := h.hub.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "publicpulse-websocket",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"connected_clients": connectedClients,
		"last_broadcast":    lastBroadcast,
	})
}
