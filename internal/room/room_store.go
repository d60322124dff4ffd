// internal/room/room_store.go
package room

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// RoomStore is the process-wide table of live rooms, keyed by room ID. It is
// owned by the server shell and passed by handle to the dispatch path; rooms
// remove themselves through their OnEmpty callback.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewRoomStore initializes an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[uuid.UUID]*Room),
	}
}

// AddRoom registers a room. Configure the room's OnEmpty callback before
// adding it so empty rooms are cleaned up automatically.
func (s *RoomStore) AddRoom(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[r.ID]; exists {
		log.Printf("RoomStore: attempted to add room %s which already exists", r.ID)
		return
	}
	s.rooms[r.ID] = r
}

// GetRoom looks up a room by ID.
func (s *RoomStore) GetRoom(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// DeleteRoom removes a room from the table. Typically reached via OnEmpty.
func (s *RoomStore) DeleteRoom(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Len reports the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
