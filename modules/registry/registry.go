package registry

import (
	"log"
	"sync"

	chat "github.com/example/terminal-chat/domain/chat"
)

// Member is one connection's presence in a room: an identity plus an
// outbound event sink. The registry never owns member lifetimes; the
// transport layer adds and removes them.
type Member interface {
	ConnID() string
	Username() string
	Send(ev chat.Event) error
}

// Registry maps room names to their current members and routes events to
// them. Mutations and broadcasts are atomic with respect to each other, so
// a member never receives an event for a room it has already left.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Member // room -> connID -> member
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]Member),
	}
}

// AddMember adds m to the named room.
func (r *Registry) AddMember(room string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]Member)
	}
	r.rooms[room][m.ConnID()] = m
}

// RemoveMember removes the connection from the named room. Removing an
// absent member is a no-op. Empty rooms are pruned.
func (r *Registry) RemoveMember(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Broadcast delivers ev to every current member of the room except the
// connections listed in exclude. Send failures are logged and skipped; a
// slow or dead peer never blocks the room.
func (r *Registry) Broadcast(room string, ev chat.Event, exclude ...string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}

	for connID, m := range members {
		if excluded(connID, exclude) {
			continue
		}
		if err := m.Send(ev); err != nil {
			log.Printf("[registry] Failed to send %s to %s: %v", ev.Type, connID, err)
		}
	}
}

// Members returns the usernames currently in the room.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username())
	}
	return names
}

// MemberCount returns the number of connections in the room.
func (r *Registry) MemberCount(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// RoomCount returns the number of rooms with at least one member.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Clear removes every member from every room. Used at shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[string]map[string]Member)
}

func excluded(connID string, exclude []string) bool {
	for _, id := range exclude {
		if id == connID {
			return true
		}
	}
	return false
}
