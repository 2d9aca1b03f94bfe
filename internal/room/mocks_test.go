package room

import (
	"sync"
	"time"

	"github.com/debatecast/showroom/internal/models"
)

type sentEvent struct {
	RoomID  string
	Type    string
	Payload interface{}
}

// mockBroadcaster records everything instead of writing to sockets.
type mockBroadcaster struct {
	mu     sync.Mutex
	states map[string][]models.RoomState
	events []sentEvent

	// onState, if set, runs for every state broadcast.
	onState func(roomID string)
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{states: make(map[string][]models.RoomState)}
}

func (mb *mockBroadcaster) BroadcastState(roomID string, state models.RoomState) {
	mb.mu.Lock()
	mb.states[roomID] = append(mb.states[roomID], state)
	hook := mb.onState
	mb.mu.Unlock()
	if hook != nil {
		hook(roomID)
	}
}

func (mb *mockBroadcaster) BroadcastEvent(roomID string, eventType string, payload interface{}) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = append(mb.events, sentEvent{RoomID: roomID, Type: eventType, Payload: payload})
}

func (mb *mockBroadcaster) stateCount(roomID string) int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.states[roomID])
}

func (mb *mockBroadcaster) lastState(roomID string) *models.RoomState {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	s := mb.states[roomID]
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
