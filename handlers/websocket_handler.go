package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/padelhub/padelhub-server/chat"
	"github.com/padelhub/padelhub-server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served to browser clients on other origins; chat events
	// are read-only broadcasts, so any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub          *chat.Hub
	matchService services.MatchService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *chat.Hub, matchService services.MatchService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		matchService: matchService,
		logger:       logger,
	}
}

// ServeMatchChat upgrades the connection and joins the client to the
// match's chat room. Clients connect to /ws/matches/{matchId}/chat.
func (h *WebSocketHandler) ServeMatchChat(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")
	if matchID == "" {
		http.Error(w, "missing matchId", http.StatusBadRequest)
		return
	}

	if _, err := h.matchService.GetByID(r.Context(), matchID); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to resolve match", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error to the client.
		h.logger.Warn("websocket upgrade failed",
			slog.String("match_id", matchID),
			slog.Any("error", err))
		return
	}

	client := &chat.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: matchID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("chat client joined", slog.String("match_id", matchID))
}
