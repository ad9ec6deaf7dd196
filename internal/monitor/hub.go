// Package monitor is the live progress broadcaster of SPEC_FULL's domain
// stack: a WebSocket server that fans a scheduler.StepEvent out to every
// connected client as JSON, so a human (or a dashboard) can watch a fuzzing
// run without touching the core.
//
// Structurally this adapts the teacher's internal/network WebSocketServer/
// WebSocketConn pair (websocket_server.go, websocket.go): a client map
// guarded by a sync.RWMutex, a per-client sync.Mutex around the actual
// write and the client's closed flag, and a read-loop goroutine per client
// whose only job is noticing the socket closed. A broadcast writes to the
// clients one after another from the draining goroutine, so a slow client
// delays delivery to the clients after it. Unlike WebSocketServer, Hub never needs NewClients or inbound
// messages — the scheduler is the only producer, every client only
// consumes — so that channel and the message-type plumbing are dropped.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ubfuzz/internal/scheduler"
)

// client is one connected monitor viewer.
type client struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// Hub accepts WebSocket connections on one HTTP path and broadcasts every
// scheduler.StepEvent it is fed to all of them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client

	server *http.Server
}

// NewHub returns an empty Hub, ready to Drain events and accept
// connections. CheckOrigin always returns true, matching the teacher's
// WebSocketServer default — this is a local debugging aid, not a
// public-facing service.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers the caller
// as a broadcast recipient until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{id: fmt.Sprintf("monitor_%d", time.Now().UnixNano()), conn: conn}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go h.readUntilClosed(c)
}

// readUntilClosed blocks on ReadMessage purely to detect the peer closing
// the socket — the monitor protocol is broadcast-only, so whatever the
// client sends is discarded.
func (h *Hub) readUntilClosed(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()

			h.mu.Lock()
			delete(h.clients, c.id)
			h.mu.Unlock()

			c.conn.Close()
			return
		}
	}
}

// Drain starts a goroutine that reads events until the channel is closed,
// broadcasting each one. The scheduler writing to events stays
// single-threaded and synchronous; only this goroutine touches the
// network.
func (h *Hub) Drain(events <-chan scheduler.StepEvent) {
	go func() {
		for ev := range events {
			h.broadcast(ev)
		}
	}()
}

func (h *Hub) broadcast(ev scheduler.StepEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.closed = true
			}
		}
		c.mu.Unlock()
	}
}

// ClientCount reports how many viewers are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run starts an HTTP server at addr serving the WebSocket endpoint at
// /ws. It blocks until the server stops (normally via Close), matching
// the teacher's ListenAndServe-in-a-goroutine convention at the call
// site rather than inside Run itself.
func (h *Hub) Run(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeHTTP)

	h.mu.Lock()
	h.server = &http.Server{Addr: addr, Handler: mux}
	server := h.server
	h.mu.Unlock()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the HTTP server down, if it was started.
func (h *Hub) Close() error {
	h.mu.Lock()
	server := h.server
	h.mu.Unlock()
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
