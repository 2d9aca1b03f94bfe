package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/debatecast/showroom/internal/hub"
	"github.com/debatecast/showroom/internal/media"
	"github.com/debatecast/showroom/internal/models"
	"github.com/debatecast/showroom/internal/room"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeMinter struct {
	token string
	err   error
	calls int
}

func (f *fakeMinter) MintToken(_ context.Context, roomName, identity string, role media.Role) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token + ":" + roomName + ":" + identity + ":" + string(role), nil
}

var errMediaDown = errors.New("media service unavailable")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T, minter media.TokenMinter) *ShowServer {
	t.Helper()
	logger := quietLogger()
	srv := NewShowServer(room.NewRoomStore(), hub.NewHub(logger), minter, nil, logger)
	srv.MediaURL = "wss://media.example"
	return srv
}

// frame is a decoded outbound message with its payload kept raw.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func nextFrame(t *testing.T, c *hub.Conn) frame {
	t.Helper()
	select {
	case raw := <-c.Out:
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame queued")
		return frame{}
	}
}

func decodeState(t *testing.T, f frame) models.RoomState {
	t.Helper()
	require.Equal(t, room.EventStateUpdate, f.Type)
	var s models.RoomState
	require.NoError(t, json.Unmarshal(f.Data, &s))
	return s
}

func drain(c *hub.Conn) {
	for {
		select {
		case <-c.Out:
		default:
			return
		}
	}
}

func clientMsg(t *testing.T, typ string, data interface{}) ClientMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return ClientMessage{Type: typ, Data: raw}
}
