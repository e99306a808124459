package broker

import (
	"errors"
	"sync"

	chat "github.com/example/terminal-chat/domain/chat"
)

// State machine errors.
var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrNotInRoom            = errors.New("not in a room")
	ErrConnectionClosed     = errors.New("connection closed")
)

// State is a connection's position in its lifecycle.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateInRoom
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateInRoom:
		return "in_room"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sink is a connection's outbound event channel back to its client.
type Sink interface {
	Send(ev chat.Event) error
}

// Connection is one client's logical session with the broker. It owns the
// authentication state and current room membership. All transitions are
// serialized; the transport's read loop drives inbound events one at a time
// while broadcasts from peers arrive on other goroutines through Send.
type Connection struct {
	id   string
	sink Sink

	mu       sync.Mutex
	username string
	room     string
	state    State
}

// NewConnection creates a connection in the Unauthenticated state.
func NewConnection(id string, sink Sink) *Connection {
	return &Connection{id: id, sink: sink, state: StateUnauthenticated}
}

// ConnID returns the transport-assigned connection ID.
func (c *Connection) ConnID() string {
	return c.id
}

// Username returns the authenticated username, empty until authenticated.
func (c *Connection) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Room returns the current room, empty when not in one.
func (c *Connection) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether the connection has reached its terminal state.
func (c *Connection) Closed() bool {
	return c.State() == StateClosed
}

// Send forwards ev to the client. Events for a closed connection are
// dropped with ErrConnectionClosed; a store round-trip that resolves after
// disconnect discards its result here.
func (c *Connection) Send(ev chat.Event) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}
	c.mu.Unlock()
	return c.sink.Send(ev)
}

// Authenticate transitions Unauthenticated to Authenticated and binds the
// username. A failed token check never reaches this point, so any error
// here is a protocol misuse, not an auth failure.
func (c *Connection) Authenticate(username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return ErrConnectionClosed
	case StateAuthenticated, StateInRoom:
		return ErrAlreadyAuthenticated
	}

	c.username = username
	c.state = StateAuthenticated
	return nil
}

// EnterRoom transitions to InRoom. Valid from Authenticated, or from InRoom
// after the caller has performed the implicit leave via LeaveRoom.
func (c *Connection) EnterRoom(room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return ErrConnectionClosed
	case StateUnauthenticated:
		return ErrNotAuthenticated
	}

	c.room = room
	c.state = StateInRoom
	return nil
}

// LeaveRoom transitions InRoom back to Authenticated and returns the room
// that was left. ok is false when the connection was not in a room;
// leaving twice is harmless.
func (c *Connection) LeaveRoom() (room string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInRoom {
		return "", false
	}

	room = c.room
	c.room = ""
	c.state = StateAuthenticated
	return room, true
}

// Close transitions to the terminal Closed state from any state. It returns
// the room the connection was in, if any, so the caller can complete the
// implicit leave. Closing twice returns ok=false the second time.
func (c *Connection) Close() (room string, wasInRoom bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return "", false
	}

	room = c.room
	wasInRoom = c.state == StateInRoom
	c.room = ""
	c.state = StateClosed
	return room, wasInRoom
}
