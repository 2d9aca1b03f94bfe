// internal/hub/hub.go
package hub

import (
	"encoding/json"
	"sync"

	"github.com/debatecast/showroom/internal/models"
	"github.com/debatecast/showroom/internal/room"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Hub keeps the subscriber group of every room and fans frames out to it.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[uuid.UUID]*Conn
	logger *logrus.Logger
}

var _ room.Broadcaster = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[uuid.UUID]*Conn),
		logger: logger,
	}
}

// Join adds c to the group of c.RoomID.
func (h *Hub) Join(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.groups[c.RoomID]
	if !ok {
		g = make(map[uuid.UUID]*Conn)
		h.groups[c.RoomID] = g
	}
	g[c.ID] = c
}

// Leave removes c from its group and closes it. Empty groups are dropped.
func (h *Hub) Leave(c *Conn) {
	h.mu.Lock()
	if g, ok := h.groups[c.RoomID]; ok {
		delete(g, c.ID)
		if len(g) == 0 {
			delete(h.groups, c.RoomID)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// GroupSize returns the number of connections subscribed to roomID.
func (h *Hub) GroupSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[roomID])
}

// Broadcast encodes msg once and queues it on every connection of roomID.
// Slow connections lose the frame instead of holding up the others.
func (h *Hub) Broadcast(roomID string, msg Message) {
	frame, ok := h.encode(roomID, msg)
	if !ok {
		return
	}
	h.fanOut(roomID, msg.Type, func(c *Conn) bool { return c.Send(frame) })
}

// BroadcastState sends a state_update snapshot to the room. Each connection
// keeps only snapshots newer than the last one it was given, so concurrent
// mutations cannot leave a client on a stale state.
func (h *Hub) BroadcastState(roomID string, state models.RoomState) {
	frame, ok := h.encode(roomID, Message{Type: room.EventStateUpdate, Data: state})
	if !ok {
		return
	}
	h.fanOut(roomID, room.EventStateUpdate, func(c *Conn) bool { return c.SendState(frame, state.Version) })
}

// BroadcastEvent sends an arbitrary event to the room.
func (h *Hub) BroadcastEvent(roomID string, eventType string, payload interface{}) {
	h.Broadcast(roomID, Message{Type: eventType, Data: payload})
}

func (h *Hub) encode(roomID string, msg Message) ([]byte, bool) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Hub: failed to marshal %s for room %q: %v", msg.Type, roomID, err)
		return nil, false
	}
	return frame, true
}

func (h *Hub) fanOut(roomID, msgType string, send func(*Conn) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.groups[roomID] {
		if !send(c) {
			h.logger.WithFields(logrus.Fields{
				"room": roomID,
				"conn": c.ID,
				"type": msgType,
			}).Warn("Hub: dropped frame for slow connection")
		}
	}
}
