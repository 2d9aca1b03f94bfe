// internal/handlers/token.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/debatecast/showroom/internal/media"
)

// TokenRequest names the media room and participant a token is minted for.
type TokenRequest struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
	Role            string `json:"role"`
}

// TokenResponse carries the signed token and where to use it.
type TokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func parseTokenRequest(r *http.Request) (TokenRequest, error) {
	var req TokenRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req = TokenRequest{
			RoomName:        q.Get("roomName"),
			ParticipantName: q.Get("participantName"),
			Role:            q.Get("role"),
		}
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("bad token request payload")
		}
	default:
		return req, errMethodNotAllowed
	}
	req.RoomName = strings.TrimSpace(req.RoomName)
	req.ParticipantName = strings.TrimSpace(req.ParticipantName)
	return req, nil
}

var errMethodNotAllowed = errors.New("method not allowed")

// TokenHandler mints a media join token. The room is created if it does not
// exist yet so the show is ready when the participant connects.
func TokenHandler(srv *ShowServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseTokenRequest(r)
		if errors.Is(err, errMethodNotAllowed) {
			http.Error(w, err.Error(), http.StatusMethodNotAllowed)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.RoomName == "" || req.ParticipantName == "" {
			http.Error(w, "roomName and participantName are required", http.StatusBadRequest)
			return
		}
		role, err := media.ParseRole(req.Role)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if _, err := srv.Store.GetOrCreate(req.RoomName); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		token, err := srv.Minter.MintToken(ctx, req.RoomName, req.ParticipantName, role)
		switch {
		case errors.Is(err, media.ErrMissingCredentials):
			srv.Logger.Errorf("Token: cannot mint for room %q: %v", req.RoomName, err)
			http.Error(w, "media service is not configured", http.StatusInternalServerError)
			return
		case err != nil:
			srv.Logger.Errorf("Token: minting failed for %q in room %q: %v", req.ParticipantName, req.RoomName, err)
			http.Error(w, "failed to mint token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{Token: token, URL: srv.MediaURL})
	}
}
