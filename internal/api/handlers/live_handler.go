package handlers

import (
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/services/live"
)

// LiveHandler upgrades requests to the live result feed.
type LiveHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a LiveHandler accepting connections from
// allowedOrigins. Requests without an Origin header are always accepted.
func NewLiveHandler(hub *live.Hub, allowedOrigins []string) *LiveHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// ServeHTTP handles GET /api/live.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		config.GetLogger().Debugf("live upgrade failed: %v", err)
		return
	}
	h.hub.Serve(conn)
}
