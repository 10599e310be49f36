package websocket

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/config"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Answerer produces the answer sentence for a question
type Answerer interface {
	Respond(question string) string
}

// Client answers the questions sent over one websocket connection
type Client struct {
	// Unique client ID
	id string

	hub      *Hub
	conn     *websocket.Conn
	answerer Answerer

	// Buffered channel of outbound messages
	send chan []byte

	config *config.Config
	logger zerolog.Logger
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, answerer Answerer, cfg *config.Config, logger zerolog.Logger) *Client {
	clientID := uuid.New().String()
	return &Client{
		id:       clientID,
		hub:      hub,
		conn:     conn,
		answerer: answerer,
		send:     make(chan []byte, 32),
		config:   cfg,
		logger:   logger.With().Str("client_id", clientID).Logger(),
	}
}

// parseQuestion accepts either the JSON request object or plain text
func parseQuestion(message []byte) string {
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var req types.QueryRequest
		if err := json.Unmarshal(trimmed, &req); err == nil {
			return req.Question
		}
	}
	return string(trimmed)
}

// readPump answers each inbound frame. It is the only reader of the
// connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket read error")
			}
			break
		}

		resp := types.QueryResponse{Answer: c.answerer.Respond(parseQuestion(message))}
		data, err := json.Marshal(resp)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to marshal answer")
			continue
		}
		if !c.hub.deliver(c, data) {
			c.logger.Warn().Msg("answer dropped, send buffer full")
		}
	}
}

// writePump is the only writer of the connection. Each queued message
// goes out as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
