// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler.
// These provide more specific reasons for closure than standard codes.
const (
	InvalidRoomIDError = 3003 // Room id missing or rejected by the store.
	ShutdownError      = 3004 // Server is shutting down.
)
