// internal/hub/conn.go
package hub

import (
	"encoding/json"
	"sync"

	"github.com/debatecast/showroom/internal/models"
	"github.com/debatecast/showroom/internal/room"
	"github.com/google/uuid"
)

// DefaultBuffer is how many frames may queue for a slow client before new
// frames for it are dropped.
const DefaultBuffer = 64

// Message is the envelope used in both directions on the socket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Conn is one subscriber's presence in a room group. Frames are queued on Out
// and drained by the connection's write pump.
type Conn struct {
	ID     uuid.UUID
	RoomID string
	Out    chan []byte

	mu        sync.Mutex
	closed    bool
	dropped   int
	lastState uint64
}

// NewConn creates a connection bound to roomID.
func NewConn(roomID string, buffer int) *Conn {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Conn{
		ID:     uuid.New(),
		RoomID: roomID,
		Out:    make(chan []byte, buffer),
	}
}

// Send queues an already encoded frame without blocking. It returns false if
// the frame was dropped because the buffer is full or the connection closed.
func (c *Conn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Out <- frame:
		return true
	default:
		c.dropped++
		return false
	}
}

// SendState queues an encoded state snapshot of the given version. A snapshot
// older than one already handed to this connection is skipped, so a client
// never sees its room go back in time. It returns false only when the frame
// was dropped.
func (c *Conn) SendState(frame []byte, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if version < c.lastState {
		return true
	}
	c.lastState = version
	select {
	case c.Out <- frame:
		return true
	default:
		c.dropped++
		return false
	}
}

// WriteState queues a state_update for this connection only.
func (c *Conn) WriteState(state models.RoomState) bool {
	frame, err := json.Marshal(Message{Type: room.EventStateUpdate, Data: state})
	if err != nil {
		return false
	}
	return c.SendState(frame, state.Version)
}

// Write encodes and queues a single message for this connection only.
func (c *Conn) Write(msgType string, data interface{}) bool {
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		return false
	}
	return c.Send(frame)
}

// WriteError sends an error frame to this connection.
func (c *Conn) WriteError(msg string) bool {
	return c.Write("error", map[string]string{"message": msg})
}

// Dropped returns how many frames were discarded for this connection.
func (c *Conn) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close stops further sends and closes Out so the write pump exits. Safe to
// call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Out)
}
