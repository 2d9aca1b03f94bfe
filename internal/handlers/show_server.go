// internal/handlers/show_server.go
package handlers

import (
	"time"

	"github.com/debatecast/showroom/internal/cache"
	"github.com/debatecast/showroom/internal/hub"
	"github.com/debatecast/showroom/internal/media"
	"github.com/debatecast/showroom/internal/room"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ShowServer holds the shared pieces every handler needs: the room store, the
// broadcast hub and the external collaborators.
type ShowServer struct {
	Store    *room.RoomStore
	Hub      *hub.Hub
	Minter   media.TokenMinter
	Recorder *cache.Recorder
	Logger   *logrus.Logger

	MediaURL     string
	TickInterval time.Duration

	// ChatRate and ChatBurst limit send_message and send_reaction per connection.
	ChatRate  float64
	ChatBurst int
}

// NewShowServer wires a server with default limits.
func NewShowServer(store *room.RoomStore, h *hub.Hub, minter media.TokenMinter, rec *cache.Recorder, logger *logrus.Logger) *ShowServer {
	if rec == nil {
		rec = cache.NewRecorder(nil, logger)
	}
	return &ShowServer{
		Store:        store,
		Hub:          h,
		Minter:       minter,
		Recorder:     rec,
		Logger:       logger,
		TickInterval: room.DefaultTickInterval,
		ChatRate:     5,
		ChatBurst:    10,
	}
}

func (srv *ShowServer) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(srv.ChatRate), srv.ChatBurst)
}
