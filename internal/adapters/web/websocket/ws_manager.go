package websocket

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/uwillc/netposture/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin requests carry no Origin header.
		return r.Header.Get("Origin") == "" || r.Host == hostOf(r.Header.Get("Origin"))
	},
}

func hostOf(origin string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if len(origin) > len(prefix) && origin[:len(prefix)] == prefix {
			return origin[len(prefix):]
		}
	}
	return origin
}

// WSMessage is the envelope for every pushed event.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager pushes scoring events to connected dashboard clients.
type WSManager struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// NewWSManager creates an empty manager.
func NewWSManager() *WSManager {
	return &WSManager{
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket upgrades the connection and tracks it until it closes.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()

	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			log.Printf("WebSocket disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// BroadcastBatchScored pushes a completed batch summary to all clients.
func (m *WSManager) BroadcastBatchScored(batch *domain.BatchScoreResult) {
	m.broadcastMessage(WSMessage{
		Type: "batch_scored",
		Payload: map[string]interface{}{
			"batch_id":         batch.BatchID,
			"timestamp":        batch.Timestamp,
			"profiles_checked": batch.ProfilesChecked,
			"average_score":    batch.AverageScore,
			"summary":          batch.Summary,
		},
	})
}

// BroadcastLog sends a log message to all connected clients
func (m *WSManager) BroadcastLog(message string, level string) {
	m.broadcastMessage(WSMessage{
		Type: "log",
		Payload: map[string]string{
			"message": message,
			"level":   level,
		},
	})
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.clients {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("WebSocket write failed, dropping client: %v", err)
			conn.Close()
			delete(m.clients, conn)
		}
	}
}
