package websocket

import (
	"context"
	"sync"

	"github.com/dennisdiepolder/monti/kpiquery/internal/metrics"
	"github.com/rs/zerolog"
)

// Hub tracks the open query connections and fans out server notices
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Notices sent to every client
	broadcast chan []byte

	// Mutex to protect clients map. A client's send channel is only closed
	// while holding it for writing.
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast: make(chan []byte, 16),
		clients:   make(map[*Client]bool),
		logger:    logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Run fans out broadcasts until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.broadcastRaw(message)
		}
	}
}

// Register adds a client
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Set(float64(total))
	h.logger.Info().
		Str("client_id", client.id).
		Int("total_clients", total).
		Msg("client connected")
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WebSocketConnections.Set(float64(total))
		h.logger.Info().
			Str("client_id", client.id).
			Int("total_clients", total).
			Msg("client disconnected")
	}
}

// Broadcast queues a notice for all clients. It drops the notice when the
// queue is full.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Msg("broadcast queue full, notice dropped")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// deliver queues a message for one client. It reports false when the client
// is gone or its buffer is full.
func (h *Hub) deliver(client *Client, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

func (h *Hub) broadcastRaw(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client's send buffer is full, close and remove it
			close(client.send)
			delete(h.clients, client)
			h.logger.Warn().
				Str("client_id", client.id).
				Msg("client send buffer full, closing connection")
		}
	}
	metrics.WebSocketConnections.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnections.Set(0)
	h.logger.Info().Msg("all clients closed")
}
