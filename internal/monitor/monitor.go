// Package monitor exposes a running capture or replay as a read-only
// WebSocket spectator feed: every decoded paint event and frame
// boundary is broadcast as JSON to whichever clients are currently
// connected, mirroring the teacher's guacd SharedSession broadcast
// shape but carrying decoder telemetry instead of raw guacd bytes.
package monitor

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rjsadow/vncwatch/internal/consumer"
	"github.com/rjsadow/vncwatch/internal/rfb"
)

// maxDisplayBuf caps the replay buffer at 4 MB of JSON telemetry; a
// late-joining spectator sees the tail of activity, not full history.
const maxDisplayBuf = 4 * 1024 * 1024

// Event is the JSON telemetry message broadcast for every Consumer
// call. Kind names which call produced it; the remaining fields are
// populated according to Kind and otherwise left zero.
type Event struct {
	Kind string  `json:"kind"`
	X    int     `json:"x,omitempty"`
	Y    int     `json:"y,omitempty"`
	W    int     `json:"w,omitempty"`
	H    int     `json:"h,omitempty"`
	R    byte    `json:"r,omitempty"`
	G    byte    `json:"g,omitempty"`
	B    byte    `json:"b,omitempty"`
	Name string  `json:"name,omitempty"`
	T    float64 `json:"t,omitempty"`
}

// client is a single connected spectator.
type client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) writeMessage(msgType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(msgType, data)
}

// Broadcaster is a consumer.Consumer that fans out telemetry to every
// connected spectator instead of writing pixels anywhere; it never
// holds the canonical decode output, only event descriptions of it.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	displayBuf []byte

	closeOnce sync.Once
	done      chan struct{}
}

// New creates an empty Broadcaster ready to accept spectators.
func New() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*client]struct{}),
		done:    make(chan struct{}),
	}
}

// AddClient registers conn as a spectator and blocks until it
// disconnects, replaying the accumulated telemetry buffer first so a
// late joiner has useful context before live events resume.
func (b *Broadcaster) AddClient(conn *websocket.Conn) {
	c := &client{conn: conn, done: make(chan struct{})}

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		conn.Close()
		return
	default:
	}
	replay := b.displayBuf
	if len(replay) > 0 {
		if err := c.writeMessage(websocket.TextMessage, replay); err != nil {
			b.mu.Unlock()
			return
		}
	}
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	go b.drainInput(c)
	<-c.done
	b.removeClient(c)
}

// drainInput reads (and discards) from the spectator socket purely to
// detect disconnection; monitor connections are always view-only.
func (b *Broadcaster) drainInput(c *client) {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) removeClient(c *client) {
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
	c.conn.Close()
}

func (b *Broadcaster) emit(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("monitor: failed to marshal event", "error", err)
		return
	}
	data = append(data, '\n')

	b.mu.Lock()
	b.displayBuf = append(b.displayBuf, data...)
	if len(b.displayBuf) > maxDisplayBuf {
		half := len(b.displayBuf) / 2
		copy(b.displayBuf, b.displayBuf[half:])
		b.displayBuf = b.displayBuf[:len(b.displayBuf)-half]
	}
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.Unlock()

	for _, c := range clients {
		if err := c.writeMessage(websocket.TextMessage, data); err != nil {
			c.close()
		}
	}
}

func (b *Broadcaster) InitScreen(w, h int, name string) rfb.Rectangle {
	b.emit(Event{Kind: "init_screen", W: w, H: h, Name: name})
	return rfb.Rectangle{X: 0, Y: 0, W: w, H: h}
}

func (b *Broadcaster) SetConverter(*rfb.Converter) {}

func (b *Broadcaster) ProcessPixels(x, y, w, h int, _ []byte) error {
	b.emit(Event{Kind: "pixels", X: x, Y: y, W: w, H: h})
	return nil
}

func (b *Broadcaster) ProcessSolid(x, y, w, h int, r, g, bl byte) error {
	b.emit(Event{Kind: "solid", X: x, Y: y, W: w, H: h, R: r, G: g, B: bl})
	return nil
}

func (b *Broadcaster) ChangeCursor(w, h, hotspotX, hotspotY int, _ []byte) error {
	b.emit(Event{Kind: "cursor_change", W: w, H: h, X: hotspotX, Y: hotspotY})
	return nil
}

func (b *Broadcaster) MoveCursor(x, y int) error {
	b.emit(Event{Kind: "cursor_move", X: x, Y: y})
	return nil
}

func (b *Broadcaster) UpdateScreen(t float64) error {
	b.emit(Event{Kind: "update", T: t})
	return nil
}

// Close tears down every connected spectator. Safe to call once.
func (b *Broadcaster) Close() error {
	b.closeOnce.Do(func() {
		b.emit(Event{Kind: "closed"})
		close(b.done)

		b.mu.RLock()
		clients := make([]*client, 0, len(b.clients))
		for c := range b.clients {
			clients = append(clients, c)
		}
		b.mu.RUnlock()

		for _, c := range clients {
			c.conn.Close()
			c.close()
		}
	})
	return nil
}

var (
	_ io.Closer        = (*Broadcaster)(nil)
	_ consumer.Consumer = (*Broadcaster)(nil)
)
