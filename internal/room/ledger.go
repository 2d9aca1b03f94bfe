package room

import (
	"github.com/debatecast/showroom/internal/models"
	"github.com/oklog/ulid/v2"
)

// MaxChatMessages bounds the chat history kept per room.
const MaxChatMessages = 50

// NewChatMessage builds a message with a fresh ULID. The amount is dropped for
// non-donations and negative amounts are treated as zero.
func NewChatMessage(user, text string, isDonation bool, amount float64) models.ChatMessage {
	if !isDonation || amount < 0 {
		amount = 0
	}
	return models.ChatMessage{
		ID:         ulid.Make().String(),
		User:       user,
		Text:       text,
		IsDonation: isDonation,
		Amount:     amount,
	}
}

// AppendChat adds msg to the ledger, records a donation when flagged, and
// evicts the oldest messages beyond MaxChatMessages.
func AppendChat(s models.RoomState, msg models.ChatMessage) models.RoomState {
	s.ChatMessages = append(s.ChatMessages, msg)
	if msg.IsDonation {
		s.Donations = append(s.Donations, models.Donation{User: msg.User, Amount: msg.Amount})
	}
	if n := len(s.ChatMessages); n > MaxChatMessages {
		trimmed := make([]models.ChatMessage, MaxChatMessages)
		copy(trimmed, s.ChatMessages[n-MaxChatMessages:])
		s.ChatMessages = trimmed
	}
	return s
}
