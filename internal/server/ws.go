package server

import (
	"net/http"
	"time"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/pkg/logger"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool
	},
}

// StatusSource is polled for the snapshot pushed to websocket clients.
type StatusSource interface {
	Status() app.Status
}

// StatusSocket pushes the status snapshot to each websocket client on a
// fixed period. Each connection has its own writer goroutine.
type StatusSocket struct {
	source   StatusSource
	interval time.Duration
	log      logger.Logger
}

// NewStatusSocket creates a StatusSocket.
func NewStatusSocket(source StatusSource, interval time.Duration, log logger.Logger) *StatusSocket {
	return &StatusSocket{source: source, interval: interval, log: log}
}

// ServeHTTP upgrades the request and pushes status until the client goes away.
func (h *StatusSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	// Reads only detect the close; clients send nothing meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(h.source.Status()); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}
