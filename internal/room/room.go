// internal/room/room.go
package room

import (
	"sync"
	"time"

	"github.com/debatecast/showroom/internal/models"
)

// Room owns one show's state. Every exported method is a single critical
// section and returns a copy of the state as it was when the lock was released.
type Room struct {
	ID string

	mu         sync.Mutex
	state      models.RoomState
	version    uint64
	lastActive time.Time
	now        func() time.Time
}

func newRoom(id string, now func() time.Time) *Room {
	return &Room{
		ID:         id,
		state:      models.NewRoomState(),
		lastActive: now(),
		now:        now,
	}
}

// Snapshot returns a copy of the current state.
func (r *Room) Snapshot() models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Summary returns the listing row for this room.
func (r *Room) Summary() models.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomSummary{
		ID:      r.ID,
		Phase:   r.state.Phase,
		Viewers: r.state.ViewersCount,
		Title:   Title(r.ID),
	}
}

// Join counts a new subscriber.
func (r *Room) Join() models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.ViewersCount++
	return r.commit()
}

// Leave uncounts a subscriber. The count never drops below zero, so a duplicate
// disconnect is harmless.
func (r *Room) Leave() models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.ViewersCount > 0 {
		r.state.ViewersCount--
	}
	return r.commit()
}

// Admin applies an operator action. On error the state is left untouched.
func (r *Room) Admin(action AdminAction) (models.RoomState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := ApplyAdmin(r.state, action)
	if err != nil {
		return r.state.Clone(), err
	}
	r.state = next
	return r.commit(), nil
}

// PostChat appends msg to the ledger.
func (r *Room) PostChat(msg models.ChatMessage) models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = AppendChat(r.state, msg)
	return r.commit()
}

// Tick advances the room by one scheduler step. changed reports whether the
// timer moved or a phase transition fired. A running timer keeps the room
// active for Sweep.
func (r *Room) Tick() (models.RoomState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, changed := Advance(r.state)
	r.state = next
	if !changed {
		return models.RoomState{}, false
	}
	return r.commit(), true
}

// idleSince reports when the room was last mutated if nobody is watching it.
func (r *Room) idleSince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.ViewersCount > 0 {
		return time.Time{}, false
	}
	return r.lastActive, true
}

// commit stamps the state with the next version after a mutation and returns
// a copy of it. mu must be held.
func (r *Room) commit() models.RoomState {
	r.version++
	r.state.Version = r.version
	r.lastActive = r.now()
	return r.state.Clone()
}
