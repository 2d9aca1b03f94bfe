package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/debatecast/showroom/internal/models"
	"github.com/debatecast/showroom/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWSServer(t *testing.T) (*ShowServer, *httptest.Server) {
	t.Helper()
	srv := newTestServer(t, &fakeMinter{})
	mux := http.NewServeMux()
	h := RoomWSHandler(srv.Logger, srv, nil)
	mux.Handle("/ws", h)
	mux.Handle("/ws/", h)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ctx context.Context, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func readState(t *testing.T, ctx context.Context, c *websocket.Conn) models.RoomState {
	t.Helper()
	var f frame
	require.NoError(t, wsjson.Read(ctx, c, &f))
	return decodeState(t, f)
}

func TestRoomWSFlow(t *testing.T) {
	srv, ts := startWSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dial(t, ctx, ts, "/ws?roomId=grand-final")
	assert.Equal(t, 1, readState(t, ctx, c).ViewersCount)
	assert.Equal(t, 1, readState(t, ctx, c).ViewersCount)

	require.NoError(t, wsjson.Write(ctx, c, map[string]interface{}{
		"type": "admin_action",
		"data": map[string]string{"action": "start"},
	}))
	s := readState(t, ctx, c)
	assert.Equal(t, models.PhaseIntro, s.Phase)
	assert.Equal(t, 15, s.TimeLeft)

	other := dial(t, ctx, ts, "/ws/grand-final")
	assert.Equal(t, 2, readState(t, ctx, other).ViewersCount)
	assert.Equal(t, 2, readState(t, ctx, c).ViewersCount)

	require.NoError(t, other.Close(websocket.StatusNormalClosure, "bye"))
	assert.Equal(t, 1, readState(t, ctx, c).ViewersCount)

	r, ok := srv.Store.Get("grand-final")
	require.True(t, ok)
	require.Eventually(t, func() bool { return srv.Hub.GroupSize("grand-final") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, r.Snapshot().ViewersCount)
}

func TestRoomWSInvalidJSON(t *testing.T) {
	_, ts := startWSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dial(t, ctx, ts, "/ws?roomId=final")
	readState(t, ctx, c)
	readState(t, ctx, c)

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{not json")))
	var f frame
	require.NoError(t, wsjson.Read(ctx, c, &f))
	assert.Equal(t, "error", f.Type)
}

func TestRoomWSRejectsMissingRoomID(t *testing.T) {
	srv, ts := startWSServer(t)

	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, srv.Store.Len())
}

func TestSchedulerBroadcastReachesSocket(t *testing.T) {
	srv, ts := startWSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dial(t, ctx, ts, "/ws?roomId=final")
	readState(t, ctx, c)
	readState(t, ctx, c)

	r, _ := srv.Store.Get("final")
	_, err := r.Admin(room.ActionStart)
	require.NoError(t, err)

	sched := room.NewScheduler(srv.Store, srv.Hub, srv.Logger)
	require.Equal(t, 1, sched.Step())
	assert.Equal(t, 14, readState(t, ctx, c).TimeLeft)
}

func TestRoomIDFromRequest(t *testing.T) {
	tests := map[string]string{
		"/ws?roomId=alpha":  "alpha",
		"/ws/beta":          "beta",
		"/ws/gamma/extra":   "gamma",
		"/ws":               "",
		"/ws/":              "",
		"/ws?roomId=%20%20": "",
	}
	for target, want := range tests {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		assert.Equal(t, want, roomIDFromRequest(r), target)
	}
}
