// internal/models/room_state.go
package models

// Phase names a stage of the debate show.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseIntro    Phase = "intro"
	PhaseRoundA   Phase = "roundA"
	PhaseRoundB   Phase = "roundB"
	PhaseAd       Phase = "ad"
	PhaseVoting   Phase = "voting"
	PhaseRage     Phase = "rage"     // valid value, not produced by any transition
	PhaseFinished Phase = "finished" // valid value, not produced by any transition
)

// Speaker identifies which debater currently holds the floor.
type Speaker string

const (
	SpeakerA    Speaker = "A"
	SpeakerB    Speaker = "B"
	SpeakerNone Speaker = "none"
)

// RoomState is the full snapshot of one room's show. It is sent wholesale to
// subscribers on every change.
type RoomState struct {
	Phase        Phase         `json:"phase"`
	TimeLeft     int           `json:"timeLeft"`
	ActivePlayer Speaker       `json:"activePlayer"`
	ViewersCount int           `json:"viewersCount"`
	ChatMessages []ChatMessage `json:"chatMessages"`
	Donations    []Donation    `json:"donations"`

	// Version increases with every committed mutation of the room. It orders
	// snapshots on the way out and is not sent to clients.
	Version uint64 `json:"-"`
}

// NewRoomState returns the state of a room nobody has touched yet.
func NewRoomState() RoomState {
	return RoomState{
		Phase:        PhaseWaiting,
		TimeLeft:     0,
		ActivePlayer: SpeakerNone,
		ViewersCount: 0,
		ChatMessages: []ChatMessage{},
		Donations:    []Donation{},
	}
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (s RoomState) Clone() RoomState {
	out := s
	out.ChatMessages = make([]ChatMessage, len(s.ChatMessages))
	copy(out.ChatMessages, s.ChatMessages)
	out.Donations = make([]Donation, len(s.Donations))
	copy(out.Donations, s.Donations)
	return out
}
