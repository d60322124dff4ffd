// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sketchparty/sketchd/internal/room"
)

// RoomWSHandler upgrades the HTTP connection to a WebSocket and runs the
// per-connection read/write pumps. Every game message flows through here; a
// dropped connection takes the same path as an explicit ROOM_LEAVE.
func RoomWSHandler(logger *logrus.Logger, store *room.RoomStore, pickWord func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		ctx, cancel := context.WithCancel(r.Context())
		conn := room.NewConn(cancel)
		logger.Infof("Client %s connected from %s", conn.ID, r.RemoteAddr)

		go writePump(ctx, c, conn, logger)
		readPump(ctx, c, conn, store, pickWord, logger)

		// Disconnection cleanup: leave whatever room the connection was in.
		// The room's OnEmpty callback tears down empty rooms.
		if rm, ok := store.GetRoom(conn.RoomID); ok {
			rm.Leave(conn)
		}
		conn.Close()
		logger.Infof("Client %s disconnected; %d room(s) live", conn.ID, store.Len())
	}
}

// readPump decodes inbound messages and hands them to dispatch until the
// connection closes or errors.
func readPump(ctx context.Context, c *websocket.Conn, conn *room.Conn, store *room.RoomStore, pickWord func() string, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("Client %s closed the connection", conn.ID)
			} else if ctx.Err() == nil {
				logger.Warnf("Client %s read error: %v", conn.ID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("Client %s sent non-text message type %d, ignoring", conn.ID, typ)
			continue
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Client %s sent invalid JSON: %v", conn.ID, err)
			continue
		}

		dispatch(logger, store, conn, pickWord, msg)
	}
}

// dispatch routes a decoded message: room creation and join precede room
// membership, everything else is resolved against the sender's current room.
// Failures are reported to the sender only and never end the connection.
func dispatch(logger *logrus.Logger, store *room.RoomStore, conn *room.Conn, pickWord func() string, msg map[string]interface{}) {
	msgType, _ := msg["type"].(string)
	switch msgType {
	case room.MsgRoomCreate:
		rm := room.NewRoom(pickWord)
		rm.OnEmpty = func(roomID uuid.UUID) {
			store.DeleteRoom(roomID)
			logger.Infof("Empty room %s destroyed; %d room(s) remaining", roomID, store.Len())
		}
		store.AddRoom(rm)
		logger.Infof("Client %s created room %s", conn.ID, rm.ID)
		conn.Write(map[string]interface{}{
			"type": room.MsgRoomCreateSuccess,
			"id":   rm.ID.String(),
		})

	case room.MsgRoomJoin:
		name, _ := msg["name"].(string)
		idStr, _ := msg["id"].(string)
		conn.Handle = name

		roomID, err := uuid.Parse(idStr)
		if err != nil {
			conn.Write(joinFailure("room does not exist"))
			return
		}
		rm, ok := store.GetRoom(roomID)
		if !ok {
			conn.Write(joinFailure("room does not exist"))
			return
		}
		if err := rm.Join(conn); err != nil {
			logger.Warnf("Client %s failed to join room %s: %v", conn.ID, roomID, err)
			conn.Write(joinFailure(err.Error()))
			return
		}
		logger.Infof("Client %s (%s) joined room %s", conn.ID, name, roomID)
		conn.Write(map[string]interface{}{"type": room.MsgRoomJoinSuccess})

	case room.MsgRoomLeave:
		rm, ok := store.GetRoom(conn.RoomID)
		if !ok {
			conn.Write(map[string]interface{}{"type": room.MsgRoomDoesNotExist})
			return
		}
		rm.Leave(conn)

	default:
		rm, ok := store.GetRoom(conn.RoomID)
		if !ok {
			conn.Write(map[string]interface{}{"type": room.MsgRoomDoesNotExist})
			return
		}
		rm.HandleMessage(conn, msg)
	}
}

func joinFailure(text string) map[string]interface{} {
	return map[string]interface{}{
		"type": room.MsgRoomJoinFailure,
		"text": text,
	}
}

// writePump drains the connection's outbound queue onto the socket and sends
// periodic pings. Exits on write/ping failure; readPump observes the closure
// and runs the leave path.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("Client %s: failed to marshal outgoing message: %v", conn.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Client %s: websocket write failed: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Client %s: ping failed, assuming disconnect: %v", conn.ID, err)
				return
			}
		}
	}
}
