package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type fakeGateway struct {
	out            chan port.WireMessage
	subscribed     []uuid.UUID
	unsubscribed   []uuid.UUID
	disconnectedID string
}

func (f *fakeGateway) Register(clientID string) <-chan port.WireMessage { return f.out }
func (f *fakeGateway) Subscribe(clientID string, jobIDs []uuid.UUID) {
	f.subscribed = append(f.subscribed, jobIDs...)
}
func (f *fakeGateway) Unsubscribe(clientID string, jobIDs []uuid.UUID) {
	f.unsubscribed = append(f.unsubscribed, jobIDs...)
}
func (f *fakeGateway) Disconnect(clientID string) { f.disconnectedID = clientID }

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandler_ForwardsGatewayMessagesToClient(t *testing.T) {
	gw := &fakeGateway{out: make(chan port.WireMessage, 4)}
	srv := httptest.NewServer(Handler(gw))
	defer srv.Close()

	conn := dial(t, srv)
	gw.out <- port.WireMessage{Type: "progress", Payload: map[string]any{"percent": 10.0}}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got port.WireMessage
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Type != "progress" {
		t.Errorf("Type = %q, want progress", got.Type)
	}
}

func TestHandler_SubscribeControlFrameReachesGateway(t *testing.T) {
	gw := &fakeGateway{out: make(chan port.WireMessage, 4)}
	srv := httptest.NewServer(Handler(gw))
	defer srv.Close()

	conn := dial(t, srv)
	jobID := uuid.NewUUID()
	if err := conn.WriteJSON(controlFrame{Action: "subscribe", JobIDs: []uuid.UUID{jobID}}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(gw.subscribed) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(gw.subscribed) != 1 || gw.subscribed[0] != jobID {
		t.Fatalf("subscribed = %v, want [%v]", gw.subscribed, jobID)
	}
}

func TestHandler_DisconnectOnClose(t *testing.T) {
	gw := &fakeGateway{out: make(chan port.WireMessage, 4)}
	srv := httptest.NewServer(Handler(gw))
	defer srv.Close()

	conn := dial(t, srv)
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if gw.disconnectedID != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if gw.disconnectedID == "" {
		t.Fatal("expected Disconnect to be called after client closed the connection")
	}
}
