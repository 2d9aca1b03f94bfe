// internal/handlers/room_session.go
package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/debatecast/showroom/internal/cache"
	"github.com/debatecast/showroom/internal/hub"
	"github.com/debatecast/showroom/internal/room"
	"golang.org/x/time/rate"
)

// Inbound event names.
const (
	msgAdminAction  = "admin_action"
	msgSendMessage  = "send_message"
	msgSendReaction = "send_reaction"
	msgPing         = "ping"
)

// ClientMessage is a frame received from a subscriber.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type adminActionPayload struct {
	Action string `json:"action"`
}

type sendMessagePayload struct {
	User       string   `json:"user"`
	Text       string   `json:"text"`
	IsDonation bool     `json:"isDonation"`
	Amount     *float64 `json:"amount,omitempty"`
}

type reactionPayload struct {
	Type string `json:"type"`
}

// roomSession binds one connection to exactly one room.
type roomSession struct {
	srv     *ShowServer
	roomID  string
	conn    *hub.Conn
	limiter *rate.Limiter
}

func newRoomSession(srv *ShowServer, roomID string, conn *hub.Conn) *roomSession {
	return &roomSession{
		srv:     srv,
		roomID:  roomID,
		conn:    conn,
		limiter: srv.newLimiter(),
	}
}

// subscribe joins the room group, counts the viewer, sends the snapshot to the
// newcomer and then to everyone.
func (s *roomSession) subscribe() error {
	s.srv.Hub.Join(s.conn)
	_, state, err := s.srv.Store.Join(s.roomID)
	if err != nil {
		s.srv.Hub.Leave(s.conn)
		return err
	}
	s.conn.WriteState(state)
	s.srv.Hub.BroadcastState(s.roomID, state)
	return nil
}

// unsubscribe leaves the group and uncounts the viewer if the room still exists.
func (s *roomSession) unsubscribe() {
	s.srv.Hub.Leave(s.conn)
	r, ok := s.srv.Store.Get(s.roomID)
	if !ok {
		return
	}
	s.srv.Hub.BroadcastState(s.roomID, r.Leave())
}

// dispatch routes one inbound frame. Problems with the frame are reported to
// the sender only.
func (s *roomSession) dispatch(msg ClientMessage) {
	switch msg.Type {
	case msgAdminAction:
		var p adminActionPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.Action == "" {
			s.conn.WriteError("admin_action requires an action")
			return
		}
		s.handleAdminAction(room.AdminAction(p.Action))

	case msgSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			s.conn.WriteError("invalid send_message payload")
			return
		}
		if strings.TrimSpace(p.User) == "" || strings.TrimSpace(p.Text) == "" {
			s.conn.WriteError("send_message requires user and text")
			return
		}
		if !s.limiter.Allow() {
			s.conn.WriteError("slow down")
			return
		}
		s.handleSendMessage(p)

	case msgSendReaction:
		var p reactionPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.Type == "" {
			s.conn.WriteError("send_reaction requires a type")
			return
		}
		if !s.limiter.Allow() {
			s.conn.WriteError("slow down")
			return
		}
		s.srv.Hub.BroadcastEvent(s.roomID, room.EventReactionReceived, p)

	case msgPing:
		s.conn.Write("pong", nil)

	default:
		s.conn.WriteError(fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (s *roomSession) handleAdminAction(action room.AdminAction) {
	r, ok := s.srv.Store.Get(s.roomID)
	if !ok {
		return
	}
	state, err := r.Admin(action)
	if err != nil {
		s.srv.Logger.Warnf("Room %s: rejected admin action %q: %v", s.roomID, action, err)
		s.conn.WriteError(fmt.Sprintf("Unknown admin action: %s", action))
		return
	}
	s.srv.Hub.BroadcastState(s.roomID, state)
	s.srv.Recorder.Record(s.roomID, cache.KindAdminAction, map[string]interface{}{
		"action": string(action),
		"phase":  string(state.Phase),
	})
}

func (s *roomSession) handleSendMessage(p sendMessagePayload) {
	r, ok := s.srv.Store.Get(s.roomID)
	if !ok {
		return
	}
	var amount float64
	if p.Amount != nil {
		amount = *p.Amount
	}
	msg := room.NewChatMessage(p.User, p.Text, p.IsDonation, amount)
	state := r.PostChat(msg)

	s.srv.Hub.BroadcastEvent(s.roomID, room.EventChatUpdate, msg)
	s.srv.Hub.BroadcastState(s.roomID, state)
	if msg.IsDonation {
		s.srv.Recorder.Record(s.roomID, cache.KindDonation, map[string]interface{}{
			"user":   msg.User,
			"amount": msg.Amount,
		})
	}
}
