package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/rl-prono/notifications"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *notifications.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler принимает браузерные соединения только с allowedOrigins; "*" разрешает любые.
func NewWebSocketHandler(hub *notifications.Hub, allowedOrigins []string) *WebSocketHandler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// без Origin - не браузер
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs подключает пользователя к его каналу уведомлений.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправил HTTP-ошибку
		slog.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("user_id", session.UserID.String()), slog.Any("error", err))
		return
	}

	client := notifications.NewClient(h.hub, conn, session.UserID)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
