package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/openleague/league-system/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from the SPA origin; CORS is enforced at the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// SubscribeHandler handles GET /ws/tournaments/{tournamentID}: the client
// joins the tournament's room and receives live bracket updates.
func (h *WebSocketHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := brackets.NewClient(h.hub, conn, roomName(id))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func roomName(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}
