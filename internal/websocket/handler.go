package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/andre/internal/session"
)

// HandleWebSocket upgrades the connection and subscribes it to the
// request's session. Visitors without a persisted session are refused.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.ID(r.Context())
		if sessionID == 0 {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, sessionID)
		client.Run(r.Context())
	}
}
