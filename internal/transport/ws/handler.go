package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quizparty/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	registry *app.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(registry *app.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and assigns the session identifier
// that acts as the player's id for the connection's lifetime. Room
// membership is established later by the join-room action, so no ambient
// room state exists outside the client itself.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	playerID := uuid.New().String()
	client := NewClient(conn, h.registry, playerID, h.logger)

	h.logger.Info("websocket connected", "playerID", playerID)

	client.Run()
}
