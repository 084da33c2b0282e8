package notifyhub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muingY/gif-compressor-backend/notify"
	"github.com/muingY/gif-compressor-backend/tool"
	"github.com/muingY/gif-compressor-backend/types"
)

const writeWait = 3 * time.Second

// Hub holds WebSocket connections and broadcasts notifications to all clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*sync.Mutex
}

// Ensure Hub implements types.NotifyHub
var _ types.NotifyHub = (*Hub)(nil)

// New creates a new notify hub.
func New() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register adds a WebSocket connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &sync.Mutex{}
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the notification as JSON to all registered connections.
func (h *Hub) Broadcast(notification *types.Notification) {
	if notification == nil {
		return
	}
	payload, err := notify.Encode(notification)
	if err != nil {
		tool.DefaultLogger.Errorf("[Notify] %v", err)
		return
	}

	h.mu.RLock()
	type target struct {
		conn *websocket.Conn
		mu   *sync.Mutex
	}
	targets := make([]target, 0, len(h.conns))
	for c, mu := range h.conns {
		targets = append(targets, target{conn: c, mu: mu})
	}
	h.mu.RUnlock()

	// gorilla connections allow one concurrent writer
	for _, t := range targets {
		t.mu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := t.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			tool.DefaultLogger.Debugf("[Notify] Failed to write to websocket client: %v", err)
		}
		t.mu.Unlock()
	}
}
