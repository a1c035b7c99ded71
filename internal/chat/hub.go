// Package chat implements the customer-facing chat subsystem: the WebSocket
// transport, per-session turn orchestration, session/user merge, and the
// read-side HTTP API.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Hub tracks the single active WebSocket connection per session. A session
// has at most one live connection: registering over an existing one closes
// the old connection (latest wins).
type Hub struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewHub creates an empty connection hub.
func NewHub() *Hub {
	return &Hub{
		active: make(map[string]*websocket.Conn),
	}
}

// Register adds a connection for a session, displacing any previous one.
func (h *Hub) Register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.active[sessionID]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}
	h.active[sessionID] = conn
	slog.Info("Chat session connected", "session_id", sessionID)
}

// Unregister removes a connection for a session. A stale unregister (the
// session was already replaced by a newer connection) is a no-op.
func (h *Hub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.active[sessionID]; ok && current == conn {
		delete(h.active, sessionID)
		slog.Info("Chat session disconnected", "session_id", sessionID)
	}
}

// Get returns the active connection for a session, or nil.
func (h *Hub) Get(sessionID string) *websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active[sessionID]
}

// Send delivers a JSON frame to a session's connection if one is active.
// Delivery is best effort: a missing or failing connection is not an error,
// the message stays available through the persisted history.
func (h *Hub) Send(ctx context.Context, sessionID string, frame any) {
	conn := h.Get(sessionID)
	if conn == nil {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Warn("Failed to marshal chat frame", "session_id", sessionID, "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("Chat frame write failed", "session_id", sessionID, "error", err)
	}
}
