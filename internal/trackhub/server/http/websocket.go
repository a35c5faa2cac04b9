package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fleetglass/fleetglass/pkg/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and registers it as an observer
// on the broadcast hub. Every event from then on is pushed as one JSON
// text message. The connection receives no replay of past events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error(err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	// Writes come from the hub's delivery goroutine and the ping ticker,
	// so they are serialized here.
	var writeMu sync.Mutex
	write := func(messageType int, payload []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(messageType, payload)
	}

	observer := s.svc.Hub().Register(func(payload []byte) error {
		return write(websocket.TextMessage, payload)
	})
	log.Info("Observer connected", "remote", r.RemoteAddr, "observer", observer.ID())

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Inbound messages are ignored; the read loop exists to detect the
	// peer going away and to service pong frames.
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(stop)
	s.svc.Hub().Unregister(observer)
	conn.Close()
	log.Info("Observer disconnected", "remote", r.RemoteAddr, "observer", observer.ID())
}
