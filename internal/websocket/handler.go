package websocket

import (
	"net/http"

	"github.com/dennisdiepolder/monti/kpiquery/internal/config"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub      *Hub
	answerer Answerer
	config   *config.Config
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. Browser origins are checked
// against the configured allowed origins; requests without an Origin
// header are accepted.
func NewHandler(hub *Hub, answerer Answerer, cfg *config.Config, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		hub:      hub,
		answerer: answerer,
		config:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, h.answerer, h.config, h.logger)
	h.hub.Register(client)
	client.Start()
}
