package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rjsadow/vncwatch/internal/monitor"
)

var monitorUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveMonitor runs a WebSocket server at addr forwarding every
// connection to b as a spectator. It blocks until the server errors
// (e.g. the port is already in use), which is logged rather than
// treated as fatal: the capture or replay itself continues either way.
func serveMonitor(addr string, b *monitor.Broadcaster) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := monitorUpgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("monitor: upgrade failed", "error", err)
			return
		}
		b.AddClient(conn)
	})

	slog.Info("monitor: listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("monitor: server stopped", "error", err)
	}
}
