// Package websocket keeps every open tab of a session in sync. When one tab
// changes the session, the others are told to reload.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// EntitySession is the entity of every session-change message.
const EntitySession = "session"

// Message is a session-change notification, e.g. type "session_cleared".
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
	}
}

// Hub maintains the active clients grouped by session id.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Client]struct{}
	logger   *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[int64]map[*Client]struct{}),
		logger:   logger,
	}
}

// Register adds a client to its session's group.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.sessions[c.sessionID]
	if !ok {
		group = make(map[*Client]struct{})
		h.sessions[c.sessionID] = group
	}
	group[c] = struct{}{}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	if _, ok := group[c]; !ok {
		return
	}
	delete(group, c)
	close(c.send)
	if len(group) == 0 {
		delete(h.sessions, c.sessionID)
	}
}

// Broadcast sends msg to every client of the session.
func (h *Hub) Broadcast(sessionID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full; drop the message
		}
	}
}

// NotifySession broadcasts a session change. Its signature matches
// session.Notifier.
func (h *Hub) NotifySession(sessionID int64, action string) {
	h.Broadcast(sessionID, NewMessage(EntitySession, action))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, group := range h.sessions {
		n += len(group)
	}
	return n
}

// SessionCount returns the number of sessions with at least one client.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
