package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sanonone/beams/pkg/frame"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// handleStream upgrades to a WebSocket and pushes one binary message per
// tick. Each message is a frame envelope (see pkg/frame) around a packed
// snapshot. The current state is sent immediately on connect.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	frames, cancel := s.Runner.Subscribe()
	defer cancel()
	slog.Info("stream client connected", "ip", r.RemoteAddr)

	// Reader: only control frames are expected; a read error means the
	// client went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.send(ws, frame.Encode(s.Runner.Frame())); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case snapshot, ok := <-frames:
			if !ok {
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := s.send(ws, snapshot); err != nil {
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			slog.Info("stream client disconnected", "ip", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// send writes one packed snapshot as a single binary message.
func (s *Server) send(ws *websocket.Conn, snapshot []byte) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := ws.NextWriter(websocket.BinaryMessage)
	if err == nil {
		err = frame.NewWriter(w).WriteFrame(frame.OpSnapshot, snapshot)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		slog.Warn("failed to write stream frame", "error", err)
	}
	return err
}
