package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/gorilla/websocket"
)

const snapshotReasonConnected = "connected"

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins only; an empty
// list or "*" allows any origin.
func NewWebSocketHandler(hub *brackets.Hub, tournamentService services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: tournamentService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs godoc
// @Summary Подписка на обновления таблицы
// @Tags standings
// @Description WebSocket. Сразу после подключения приходит текущий снимок, затем STANDINGS_UPDATED после каждого изменения.
// @Router /ws/standings [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := brackets.NewClient(h.hub, conn)

	snapshot, err := h.tournamentService.Snapshot(r.Context(), snapshotReasonConnected)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build initial snapshot", slog.Any("error", err))
	} else if msg, err := json.Marshal(brackets.WebSocketMessage{Type: brackets.MessageStandingsUpdated, Payload: snapshot}); err == nil {
		client.Send <- msg
	}

	if err := h.hub.Attach(r.Context(), client); err != nil {
		h.logger.WarnContext(r.Context(), "websocket client rejected", slog.Any("error", err))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
