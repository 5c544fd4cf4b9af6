package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub owns the in-process presence map and the per-conversation rooms.
// Presence is last-connection-wins: a user opening a second tab keeps the
// first tab connected (and in its rooms), but direct pushes go only to the
// most recent connection. None of this state survives the process; a
// multi-instance deployment would need an external presence store.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Connection            // connection id -> connection
	presence  map[uint64]*Connection            // user id -> most recent connection
	rooms     map[uint64]map[string]*Connection // conversation id -> connection id -> connection
	connRooms map[string]map[uint64]struct{}    // connection id -> joined conversation ids
}

func NewHub() *Hub {
	return &Hub{
		conns:     make(map[string]*Connection),
		presence:  make(map[uint64]*Connection),
		rooms:     make(map[uint64]map[string]*Connection),
		connRooms: make(map[string]map[uint64]struct{}),
	}
}

// Attach registers an authenticated connection and makes it the presence
// entry for its user.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.presence[conn.UserID] = conn
	h.connRooms[conn.ID] = make(map[uint64]struct{})
	h.mu.Unlock()
}

// Detach removes the connection from every room and, when it is still the
// user's current connection, from the presence map.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn.ID]; !ok {
		return
	}
	delete(h.conns, conn.ID)
	if current, ok := h.presence[conn.UserID]; ok && current.ID == conn.ID {
		delete(h.presence, conn.UserID)
	}
	for convID := range h.connRooms[conn.ID] {
		h.leaveLocked(convID, conn.ID)
	}
	delete(h.connRooms, conn.ID)
}

// Join adds the connection to the conversation's room. Joining twice is a
// no-op.
func (h *Hub) Join(convID uint64, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn.ID]; !ok {
		return
	}
	room := h.rooms[convID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[convID] = room
	}
	room[conn.ID] = conn
	h.connRooms[conn.ID][convID] = struct{}{}
}

// Leave removes the connection from the room; leaving a room it never
// joined is a no-op.
func (h *Hub) Leave(convID uint64, conn *Connection) {
	h.mu.Lock()
	h.leaveLocked(convID, conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to every member of the conversation's room,
// skipping excludeConnID when non-empty. Returns the number of successful
// deliveries.
func (h *Hub) Broadcast(convID uint64, payload []byte, excludeConnID string) int {
	h.mu.RLock()
	room := h.rooms[convID]
	members := make([]*Connection, 0, len(room))
	for id, conn := range room {
		if id == excludeConnID {
			continue
		}
		members = append(members, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range members {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to the user's most recent connection,
// reporting whether the user was online.
func (h *Hub) NotifyUser(userID uint64, payload []byte) bool {
	h.mu.RLock()
	conn := h.presence[userID]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// Online reports whether a presence entry exists for the user.
func (h *Hub) Online(userID uint64) bool {
	h.mu.RLock()
	_, ok := h.presence[userID]
	h.mu.RUnlock()
	return ok
}

// Close terminates every tracked connection and resets the hub.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.presence = make(map[uint64]*Connection)
	h.rooms = make(map[uint64]map[string]*Connection)
	h.connRooms = make(map[string]map[uint64]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}

func (h *Hub) leaveLocked(convID uint64, connID string) {
	room := h.rooms[convID]
	if room == nil {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(h.rooms, convID)
	}
	if memberships, ok := h.connRooms[connID]; ok {
		delete(memberships, convID)
	}
}
