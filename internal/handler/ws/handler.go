// Package ws wires a real-time transport onto the Subscription Gateway
// (spec.md §6.2): a client connects once, then sends subscribe/unsubscribe
// control frames naming job ids and receives the aggregator's fan-out on
// the same connection.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Gateway is the subset of internal/subscription.Gateway this handler
// drives; kept as an interface so the handler can be tested without a real
// gateway.
type Gateway interface {
	Register(clientID string) <-chan port.WireMessage
	Subscribe(clientID string, jobIDs []uuid.UUID)
	Unsubscribe(clientID string, jobIDs []uuid.UUID)
	Disconnect(clientID string)
}

// controlFrame is the client->server message shape: {action, jobIds}.
type controlFrame struct {
	Action string      `json:"action"`
	JobIDs []uuid.UUID `json:"jobIds"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades the connection, registers a client with gw, and runs the
// read/write pumps until the client disconnects (the sole cancellation
// mechanism per spec.md §4.F).
func Handler(gw Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf(r.Context(), "websocket upgrade failed: %v", err)
			return
		}

		clientID := uuid.NewUUID().String()
		outbound := gw.Register(clientID)

		done := make(chan struct{})
		go writePump(conn, outbound, done)
		readPump(conn, gw, clientID, done)
	}
}

func readPump(conn *websocket.Conn, gw Gateway, clientID string, done chan struct{}) {
	defer func() {
		gw.Disconnect(clientID)
		close(done)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame controlFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		switch frame.Action {
		case "subscribe":
			gw.Subscribe(clientID, frame.JobIDs)
		case "unsubscribe":
			gw.Unsubscribe(clientID, frame.JobIDs)
		}
	}
}

func writePump(conn *websocket.Conn, outbound <-chan port.WireMessage, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-outbound:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
