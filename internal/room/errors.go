package room

import "errors"

var (
	// ErrUnknownAction is returned for admin actions other than start, next_round and reset.
	ErrUnknownAction = errors.New("unknown admin action")
	// ErrEmptyRoomID is returned when a room is referenced without an identifier.
	ErrEmptyRoomID = errors.New("room id is required")
)
