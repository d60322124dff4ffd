// internal/room/conn.go
package room

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is a single participant's presence in a room. The transport layer
// creates one per WebSocket connection and drains OutChan in its write pump;
// the engine never touches the socket directly.
type Conn struct {
	ID     uuid.UUID
	Handle string
	Score  int

	// RoomID tracks which room this connection currently belongs to
	// (uuid.Nil when not in a room). Only mutated through the connection's
	// own dispatch path.
	RoomID uuid.UUID

	Cancel  context.CancelFunc
	OutChan chan map[string]interface{}

	mu     sync.Mutex
	closed bool
}

// NewConn builds a connection handle with a buffered outbound queue.
func NewConn(cancel context.CancelFunc) *Conn {
	return &Conn{
		ID:      uuid.New(),
		Cancel:  cancel,
		OutChan: make(chan map[string]interface{}, 32),
	}
}

// Write pushes a message onto the outbound queue without blocking. Messages
// to a closed connection are dropped silently; a full queue is logged and the
// message dropped rather than stalling the room.
func (c *Conn) Write(msg map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.OutChan <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.Printf("conn %s: outbound queue full, dropped message type %q", c.ID, msgType)
	}
}

// Open reports whether the connection can still be delivered to.
func (c *Conn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close marks the connection undeliverable, closes the outbound queue so the
// write pump exits, and cancels the connection context. Idempotent.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.OutChan)
	c.mu.Unlock()
	if c.Cancel != nil {
		c.Cancel()
	}
}
