// internal/room/phase.go
package room

import "github.com/debatecast/showroom/internal/models"

// AdminAction is an operator command that moves the show along.
type AdminAction string

const (
	ActionStart     AdminAction = "start"
	ActionNextRound AdminAction = "next_round"
	ActionReset     AdminAction = "reset"
)

// Phase durations in seconds.
const (
	IntroSeconds = 15
	RoundSeconds = 45
	AdSeconds    = 5
)

// ApplyAdmin returns the state that results from an admin action. The input is
// not modified except that its slices may be shared with the result.
func ApplyAdmin(s models.RoomState, action AdminAction) (models.RoomState, error) {
	switch action {
	case ActionStart:
		s.Phase, s.TimeLeft, s.ActivePlayer = models.PhaseIntro, IntroSeconds, models.SpeakerNone
	case ActionNextRound:
		s = nextRound(s)
	case ActionReset:
		viewers := s.ViewersCount
		s = models.NewRoomState()
		s.ViewersCount = viewers
	default:
		return s, ErrUnknownAction
	}
	return s, nil
}

// nextRound is the manual advance. Any phase outside the linear pipeline
// resynchronises to roundA.
func nextRound(s models.RoomState) models.RoomState {
	switch s.Phase {
	case models.PhaseIntro:
		return enter(s, models.PhaseRoundA)
	case models.PhaseRoundA:
		return enter(s, models.PhaseRoundB)
	case models.PhaseRoundB:
		return enter(s, models.PhaseAd)
	case models.PhaseAd:
		return enter(s, models.PhaseVoting)
	default:
		return resync(s)
	}
}

func resync(s models.RoomState) models.RoomState {
	return enter(s, models.PhaseRoundA)
}

// enter sets the phase together with its timer and speaker.
func enter(s models.RoomState, p models.Phase) models.RoomState {
	s.Phase = p
	switch p {
	case models.PhaseIntro:
		s.TimeLeft, s.ActivePlayer = IntroSeconds, models.SpeakerNone
	case models.PhaseRoundA:
		s.TimeLeft, s.ActivePlayer = RoundSeconds, models.SpeakerA
	case models.PhaseRoundB:
		s.TimeLeft, s.ActivePlayer = RoundSeconds, models.SpeakerB
	case models.PhaseAd:
		s.TimeLeft, s.ActivePlayer = AdSeconds, models.SpeakerNone
	default:
		s.TimeLeft, s.ActivePlayer = 0, models.SpeakerNone
	}
	return s
}

// autoNext reports the phase that follows p when its timer runs out.
func autoNext(p models.Phase) (models.Phase, bool) {
	switch p {
	case models.PhaseIntro:
		return models.PhaseRoundA, true
	case models.PhaseRoundA:
		return models.PhaseRoundB, true
	case models.PhaseRoundB:
		return models.PhaseAd, true
	case models.PhaseAd:
		return models.PhaseVoting, true
	case models.PhaseWaiting, models.PhaseVoting, models.PhaseFinished, models.PhaseRage:
		return p, false
	default:
		return p, false
	}
}

// Advance runs one second of show time: the timer is decremented if positive,
// and when it reaches zero on this call the phase auto-advances. changed is
// false when nothing happened, which is the case for idle rooms.
func Advance(s models.RoomState) (next models.RoomState, changed bool) {
	if s.TimeLeft <= 0 {
		if s.TimeLeft < 0 {
			s.TimeLeft = 0
		}
		return s, false
	}
	s.TimeLeft--
	if s.TimeLeft == 0 {
		if p, ok := autoNext(s.Phase); ok {
			s = enter(s, p)
		}
	}
	return s, true
}
