package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

func newTestServer(t *testing.T, b *Broadcaster) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		b.AddClient(conn)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var ev Event
	line := strings.TrimSpace(string(data))
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("Unmarshal %q: %v", line, err)
	}
	return ev
}

func TestBroadcasterDeliversLiveEvents(t *testing.T) {
	b := New()
	_, url := newTestServer(t, b)
	conn := dial(t, url)

	time.Sleep(20 * time.Millisecond) // let AddClient register before we emit
	b.ProcessSolid(1, 2, 3, 4, 10, 20, 30)

	ev := readEvent(t, conn)
	if ev.Kind != "solid" || ev.X != 1 || ev.R != 10 {
		t.Fatalf("got %+v", ev)
	}
}

func TestBroadcasterReplaysBufferToLateJoiner(t *testing.T) {
	b := New()
	b.ProcessPixels(5, 6, 7, 8, nil)

	_, url := newTestServer(t, b)
	conn := dial(t, url)

	ev := readEvent(t, conn)
	if ev.Kind != "pixels" || ev.X != 5 || ev.W != 7 {
		t.Fatalf("got %+v", ev)
	}
}

func TestBroadcasterCloseDisconnectsClients(t *testing.T) {
	b := New()
	_, url := newTestServer(t, b)
	conn := dial(t, url)

	time.Sleep(20 * time.Millisecond)
	b.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return // expected: connection closes
		}
	}
}
