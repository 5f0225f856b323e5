package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Subscription kinds served over websocket.
const (
	KindChats    = "chats"
	KindMessages = "messages"
	KindStatuses = "statuses"
)

// Hub tracks active websocket subscriptions by kind.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]ConnInfo)}
}

// Add registers a websocket connection under a kind.
func (h *Hub) Add(kind string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[kind]; !ok {
		h.rooms[kind] = make(map[*websocket.Conn]ConnInfo)
	}
	h.rooms[kind][conn] = info
}

// Remove deregisters a connection. Removing twice is a no-op.
func (h *Hub) Remove(kind string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[kind]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, kind)
		}
	}
}

// Count reports the number of active connections of a kind.
func (h *Hub) Count(kind string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[kind])
}

// Info returns the registration details of a connection.
func (h *Hub) Info(kind string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conns, ok := h.rooms[kind]; ok {
		info, exists := conns[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
