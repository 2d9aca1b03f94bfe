package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/debatecast/showroom/internal/models"
	"github.com/debatecast/showroom/internal/room"
)

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListRoomsHandler returns every room that has viewers or has not finished.
func ListRoomsHandler(srv *ShowServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := []models.RoomSummary{}
		for _, rm := range srv.Store.Rooms() {
			if sum := rm.Summary(); sum.Listed() {
				out = append(out, sum)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HealthHandler reports liveness and the number of rooms in memory.
func HealthHandler(srv *ShowServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"rooms":  srv.Store.Len(),
		})
	}
}

// ConfigHandler exposes the static settings clients need to render the show.
func ConfigHandler(srv *ShowServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"mediaUrl":        srv.MediaURL,
			"tickIntervalMs":  srv.TickInterval.Milliseconds(),
			"maxChatMessages": room.MaxChatMessages,
		})
	}
}
