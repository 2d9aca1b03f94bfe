// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/debatecast/showroom/internal/hub"
	"github.com/debatecast/showroom/internal/middleware"
	"github.com/sirupsen/logrus"
)

const (
	readLimit    = 32 << 10
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// roomIDFromRequest reads the room id from ?roomId= or from /ws/{roomId}.
func roomIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get("roomId")); id != "" {
		return id
	}
	rest := strings.TrimPrefix(r.URL.Path, "/ws")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return ""
	}
	return strings.Split(rest, "/")[0]
}

// RoomWSHandler upgrades the connection and binds it to the room named in the
// request. Connections without a room id are refused before the upgrade.
func RoomWSHandler(logger *logrus.Logger, srv *ShowServer, originPatterns []string) http.HandlerFunc {
	if len(originPatterns) == 0 {
		originPatterns = []string{"*"}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := roomIDFromRequest(r)
		if roomID == "" {
			http.Error(w, "missing roomId", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error for room %q: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")
		c.SetReadLimit(readLimit)

		conn := hub.NewConn(roomID, hub.DefaultBuffer)
		sess := newRoomSession(srv, roomID, conn)
		if err := sess.subscribe(); err != nil {
			logger.Warnf("Room %q: subscribe failed: %v", roomID, err)
			c.Close(InvalidRoomIDError, "invalid room")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, roomID)

		// The request context ends with the server's base context on shutdown.
		// Reads run on a detached context so the client gets ShutdownError
		// instead of a read timeout.
		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		defer cancel()
		go func() {
			select {
			case <-r.Context().Done():
				c.Close(ShutdownError, "server shutting down")
			case <-ctx.Done():
			}
		}()

		writeDone := make(chan struct{})
		go func() {
			defer close(writeDone)
			writePump(ctx, c, conn, logger)
			// A dead writer means a dead client; stop reading too.
			cancel()
		}()

		readErr := readPump(ctx, c, sess, logger)

		// Leaving the hub closes conn.Out, which stops the write pump.
		sess.unsubscribe()
		cancel()
		<-writeDone

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, roomID, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump decodes frames from the client and hands them to the session until
// the connection fails or ctx ends. A normal close returns nil.
func readPump(ctx context.Context, c *websocket.Conn, sess *roomSession, logger *logrus.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				status == ShutdownError || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("Room %s: ignoring non-text frame from %s", sess.roomID, sess.conn.ID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debugf("Room %s: invalid json from %s: %v", sess.roomID, sess.conn.ID, err)
			sess.conn.WriteError("Invalid JSON format")
			continue
		}
		sess.dispatch(msg)
	}
}

// writePump drains the connection's queue onto the socket and keeps it alive
// with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *hub.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-conn.Out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				logger.Warnf("Room %s: write to %s failed: %v", conn.RoomID, conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Room %s: ping to %s failed: %v", conn.RoomID, conn.ID, err)
				return
			}
		}
	}
}
