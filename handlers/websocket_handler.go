package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/live"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong in the deployment's reverse proxy config.
		return true
	},
}

type WebSocketHandler struct {
	hub                *live.Hub
	competitionService *services.CompetitionService
	logger             *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, competitionService *services.CompetitionService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, competitionService: competitionService, logger: logger}
}

// ServeWs handles GET /ws/competitions/{competitionID}: it subscribes the
// caller to that competition's live standings stream.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.competitionService.GetCompetition(r.Context(), competitionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed",
			slog.Int("competition_id", competitionID), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, fmt.Sprintf("competition:%d", competitionID))
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
