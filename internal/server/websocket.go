package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is open to any origin, like the proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents streams the workspace change feed as JSON text messages. The
// first message is a grid event carrying the current snapshot, followed by a
// session event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	remoteAddr := r.RemoteAddr

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", remoteAddr), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.activeConns[conn] = remoteAddr
	s.mu.Unlock()
	s.wg.Add(1)

	logging.LogConnection(remoteAddr, "websocket_upgraded")

	events, unsubscribe := ws.Subscribe(constructor.DefaultEventBuffer)
	go s.readPump(conn, remoteAddr)
	go func() {
		defer s.wg.Done()
		defer func() {
			unsubscribe()
			_ = conn.Close()
			s.mu.Lock()
			delete(s.activeConns, conn)
			s.mu.Unlock()
			logging.LogConnection(remoteAddr, "websocket_closed")
		}()
		s.writePump(conn, remoteAddr, ws, events)
	}()
}

// readPump discards client messages and keeps the read deadline alive
// through pongs. It returns when the peer goes away, which closes the
// connection and ends writePump.
func (s *Server) readPump(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Connection closed or error reading frame",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, remoteAddr string, ws *constructor.Workspace, events <-chan constructor.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	g := ws.Snapshot()
	view := ws.SessionView()
	initial := []constructor.Event{
		{Kind: constructor.EventGrid, Grid: &g},
		{Kind: constructor.EventSession, Session: &view},
	}
	for _, ev := range initial {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
	}

	for {
		select {
		case <-s.ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "workspace closed"))
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				logging.Debug("Event write failed", zap.String("remote_addr", remoteAddr), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev constructor.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
