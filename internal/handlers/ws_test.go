// internal/handlers/ws_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchparty/sketchd/internal/room"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel) // keep test output quiet
	return logger
}

func recv(t *testing.T, c *room.Conn) map[string]interface{} {
	t.Helper()
	select {
	case msg := <-c.OutChan:
		return msg
	default:
		t.Fatal("expected a message on the outbound queue")
		return nil
	}
}

func drainConn(c *room.Conn) []map[string]interface{} {
	var msgs []map[string]interface{}
	for {
		select {
		case m := <-c.OutChan:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func pickWord() string { return "secret" }

func TestDispatchRoomCreateAndJoin(t *testing.T) {
	logger := testLogger()
	store := room.NewRoomStore()

	host := room.NewConn(nil)
	dispatch(logger, store, host, pickWord, map[string]interface{}{"type": room.MsgRoomCreate})

	created := recv(t, host)
	require.Equal(t, room.MsgRoomCreateSuccess, created["type"])
	roomID, ok := created["id"].(string)
	require.True(t, ok)
	require.Equal(t, 1, store.Len())

	dispatch(logger, store, host, pickWord, map[string]interface{}{
		"type": room.MsgRoomJoin,
		"name": "alice",
		"id":   roomID,
	})
	msgs := drainConn(host)
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, room.MsgRoomJoinSuccess, last["type"])
	assert.Equal(t, "alice", host.Handle)

	id, err := uuid.Parse(roomID)
	require.NoError(t, err)
	assert.Equal(t, id, host.RoomID)
}

func TestDispatchJoinUnknownRoom(t *testing.T) {
	logger := testLogger()
	store := room.NewRoomStore()

	conn := room.NewConn(nil)
	dispatch(logger, store, conn, pickWord, map[string]interface{}{
		"type": room.MsgRoomJoin,
		"name": "bob",
		"id":   uuid.NewString(),
	})

	reply := recv(t, conn)
	assert.Equal(t, room.MsgRoomJoinFailure, reply["type"])
	assert.Equal(t, "room does not exist", reply["text"])

	// Malformed id takes the same failure path.
	dispatch(logger, store, conn, pickWord, map[string]interface{}{
		"type": room.MsgRoomJoin,
		"name": "bob",
		"id":   "not-a-uuid",
	})
	reply = recv(t, conn)
	assert.Equal(t, room.MsgRoomJoinFailure, reply["type"])
}

func TestDispatchJoinFullRoom(t *testing.T) {
	logger := testLogger()
	store := room.NewRoomStore()

	host := room.NewConn(nil)
	dispatch(logger, store, host, pickWord, map[string]interface{}{"type": room.MsgRoomCreate})
	roomID := recv(t, host)["id"].(string)

	conns := make([]*room.Conn, 0, room.MaxConnections)
	for i := 0; i < room.MaxConnections; i++ {
		c := room.NewConn(nil)
		dispatch(logger, store, c, pickWord, map[string]interface{}{
			"type": room.MsgRoomJoin, "name": "p", "id": roomID,
		})
		conns = append(conns, c)
	}

	extra := room.NewConn(nil)
	dispatch(logger, store, extra, pickWord, map[string]interface{}{
		"type": room.MsgRoomJoin, "name": "late", "id": roomID,
	})
	msgs := drainConn(extra)
	require.NotEmpty(t, msgs)
	assert.Equal(t, room.MsgRoomJoinFailure, msgs[len(msgs)-1]["type"])

	rm, ok := store.GetRoom(conns[0].RoomID)
	require.True(t, ok)
	rm.Mu.Lock()
	assert.Len(t, rm.Players, room.MaxConnections)
	rm.Mu.Unlock()
}

func TestDispatchInGameMessageWithoutRoom(t *testing.T) {
	logger := testLogger()
	store := room.NewRoomStore()

	conn := room.NewConn(nil)
	dispatch(logger, store, conn, pickWord, map[string]interface{}{
		"type": room.MsgChatClient,
		"text": "hello?",
	})
	reply := recv(t, conn)
	assert.Equal(t, room.MsgRoomDoesNotExist, reply["type"])

	dispatch(logger, store, conn, pickWord, map[string]interface{}{"type": room.MsgRoomLeave})
	reply = recv(t, conn)
	assert.Equal(t, room.MsgRoomDoesNotExist, reply["type"])
}

func TestDispatchLeaveDestroysEmptyRoom(t *testing.T) {
	logger := testLogger()
	store := room.NewRoomStore()

	conn := room.NewConn(nil)
	dispatch(logger, store, conn, pickWord, map[string]interface{}{"type": room.MsgRoomCreate})
	roomID := recv(t, conn)["id"].(string)
	dispatch(logger, store, conn, pickWord, map[string]interface{}{
		"type": room.MsgRoomJoin, "name": "alice", "id": roomID,
	})
	require.Equal(t, 1, store.Len())

	dispatch(logger, store, conn, pickWord, map[string]interface{}{"type": room.MsgRoomLeave})
	assert.Equal(t, 0, store.Len(), "empty room removed from the table")
	assert.Equal(t, uuid.Nil, conn.RoomID)
}
