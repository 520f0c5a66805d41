package controller

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ehub-dashboard/internal/modules/soil/store"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type wsMessage struct {
	Type   string           `json:"type"`
	Change store.ChangeKind `json:"change,omitempty"`
	State  store.State      `json:"state"`
}

// handleWS pushes the dashboard state on connect and after every change.
// Slow clients only receive the latest state.
func (c *soilControllerImpl) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	changes, cancel := c.service.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	if err := writeState(conn, wsMessage{Type: "state", State: c.service.State()}); err != nil {
		slog.Debug("websocket initial write failed", "error", err)
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if err := writeState(conn, wsMessage{Type: "state", Change: ch.Kind, State: ch.State}); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains client frames so control messages are handled.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeState(conn *websocket.Conn, msg wsMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
