// internal/room/room_store.go
package room

import (
	"sort"
	"sync"
	"time"

	"github.com/debatecast/showroom/internal/models"
)

// RoomStore maps room ids to rooms. Rooms are created on first reference and
// live until the process exits, unless Sweep is used.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// OnCreate, if set, is called after a room has been inserted. It runs
	// outside the store lock.
	OnCreate func(id string)

	now func() time.Time
}

// NewRoomStore returns an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
		now:   time.Now,
	}
}

// GetOrCreate returns the room for id, creating it if absent. Concurrent
// callers with the same unseen id all receive the same *Room.
func (s *RoomStore) GetOrCreate(id string) (*Room, error) {
	if id == "" {
		return nil, ErrEmptyRoomID
	}
	s.mu.Lock()
	r, created := s.getOrCreateLocked(id)
	s.mu.Unlock()

	if created && s.OnCreate != nil {
		s.OnCreate(id)
	}
	return r, nil
}

// Join is GetOrCreate followed by Room.Join as one step, so Sweep cannot
// remove the room between the lookup and the viewer being counted.
func (s *RoomStore) Join(id string) (*Room, models.RoomState, error) {
	if id == "" {
		return nil, models.RoomState{}, ErrEmptyRoomID
	}
	s.mu.Lock()
	r, created := s.getOrCreateLocked(id)
	state := r.Join()
	s.mu.Unlock()

	if created && s.OnCreate != nil {
		s.OnCreate(id)
	}
	return r, state, nil
}

func (s *RoomStore) getOrCreateLocked(id string) (*Room, bool) {
	if r, ok := s.rooms[id]; ok {
		return r, false
	}
	r := newRoom(id, s.now)
	s.rooms[id] = r
	return r, true
}

// Get returns the room for id without creating it.
func (s *RoomStore) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Rooms returns the rooms known at the time of the call, ordered by id.
func (s *RoomStore) Rooms() []*Room {
	s.mu.Lock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of rooms.
func (s *RoomStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Sweep removes rooms that have had no viewers and no activity for at least
// ttl, returning their ids. Rooms are checked under the store lock, which
// Join also holds while counting a viewer. A room that is referenced again
// is recreated with the default state.
func (s *RoomStore) Sweep(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, r := range s.rooms {
		since, idle := r.idleSince()
		if idle && since.Before(cutoff) {
			delete(s.rooms, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}
