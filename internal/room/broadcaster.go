package room

import "github.com/debatecast/showroom/internal/models"

// Outbound event names.
const (
	EventStateUpdate      = "state_update"
	EventChatUpdate       = "chat_update"
	EventReactionReceived = "reaction_received"
)

// Broadcaster fans events out to every subscriber of a room. Implementations
// must not block on slow subscribers.
type Broadcaster interface {
	BroadcastState(roomID string, state models.RoomState)
	BroadcastEvent(roomID string, eventType string, payload interface{})
}
