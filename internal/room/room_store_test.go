package room

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateConcurrentFirstReference(t *testing.T) {
	store := NewRoomStore()
	var created int32
	store.OnCreate = func(id string) { atomic.AddInt32(&created, 1) }

	const callers = 64
	rooms := make([]*Room, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			r, err := store.GetOrCreate("grand-final")
			require.NoError(t, err)
			rooms[i] = r
		}(i)
	}
	close(start)
	wg.Wait()

	for _, r := range rooms {
		assert.Same(t, rooms[0], r)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	assert.Equal(t, 1, store.Len())
}

func TestGetDoesNotCreate(t *testing.T) {
	store := NewRoomStore()
	_, ok := store.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	_, err := store.GetOrCreate("ghost")
	require.NoError(t, err)
	r, ok := store.Get("ghost")
	require.True(t, ok)
	assert.Equal(t, "ghost", r.ID)
}

func TestGetOrCreateRejectsEmptyID(t *testing.T) {
	store := NewRoomStore()
	_, err := store.GetOrCreate("")
	assert.ErrorIs(t, err, ErrEmptyRoomID)
	assert.Equal(t, 0, store.Len())
}

func TestRoomsIsOrderedCopy(t *testing.T) {
	store := NewRoomStore()
	for _, id := range []string{"c", "a", "b"} {
		_, err := store.GetOrCreate(id)
		require.NoError(t, err)
	}
	rooms := store.Rooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, "a", rooms[0].ID)
	assert.Equal(t, "b", rooms[1].ID)
	assert.Equal(t, "c", rooms[2].ID)

	_, err := store.GetOrCreate("d")
	require.NoError(t, err)
	assert.Len(t, rooms, 3)
}

func TestSweepRemovesOnlyIdleEmptyRooms(t *testing.T) {
	clock := newFakeClock()
	store := NewRoomStore()
	store.now = clock.Now

	empty, _ := store.GetOrCreate("empty")
	watched, _ := store.GetOrCreate("watched")
	_, _ = store.GetOrCreate("recent")
	watched.Join()
	_ = empty

	clock.Advance(10 * time.Minute)
	recent, _ := store.Get("recent")
	recent.PostChat(NewChatMessage("ann", "still here", false, 0))

	assert.Nil(t, store.Sweep(0), "a zero ttl disables expiry")
	assert.Equal(t, []string{"empty"}, store.Sweep(5*time.Minute))

	_, ok := store.Get("empty")
	assert.False(t, ok)
	_, ok = store.Get("watched")
	assert.True(t, ok)
	_, ok = store.Get("recent")
	assert.True(t, ok)
}

func TestSweepKeepsRoomsWithRunningTimer(t *testing.T) {
	clock := newFakeClock()
	store := NewRoomStore()
	store.now = clock.Now

	r, _ := store.GetOrCreate("unwatched-show")
	_, err := r.Admin(ActionStart)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, changed := r.Tick()
	require.True(t, changed)

	assert.Empty(t, store.Sweep(5*time.Minute))
	_, ok := store.Get("unwatched-show")
	assert.True(t, ok)
}

func TestJoinIsCountedBeforeSweepCanSeeTheRoom(t *testing.T) {
	clock := newFakeClock()
	store := NewRoomStore()
	store.now = clock.Now

	stop := make(chan struct{})
	swept := make(chan struct{})
	go func() {
		defer close(swept)
		for {
			select {
			case <-stop:
				return
			default:
			}
			clock.Advance(time.Hour)
			store.Sweep(time.Nanosecond)
		}
	}()

	const joiners = 32
	rooms := make([]*Room, joiners)
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, _, err := store.Join("late-night")
			assert.NoError(t, err)
			rooms[i] = r
		}(i)
	}
	wg.Wait()
	close(stop)
	<-swept

	current, ok := store.Get("late-night")
	require.True(t, ok)
	for _, r := range rooms {
		assert.Same(t, current, r, "every viewer is counted on the live room")
	}
	assert.Equal(t, joiners, current.Snapshot().ViewersCount)
}

func TestJoinRejectsEmptyID(t *testing.T) {
	_, _, err := NewRoomStore().Join("")
	assert.ErrorIs(t, err, ErrEmptyRoomID)
}
