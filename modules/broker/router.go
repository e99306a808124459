package broker

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-monolith/mono"
	"github.com/google/uuid"

	chat "github.com/example/terminal-chat/domain/chat"
	"github.com/example/terminal-chat/events"
	"github.com/example/terminal-chat/modules/registry"
)

// storeTimeout bounds every store round-trip so a stalled database cannot
// wedge a connection forever.
const storeTimeout = 10 * time.Second

// Store is the session store contract the router depends on.
type Store interface {
	RoomExists(ctx context.Context, name string) (bool, error)
	AppendMessage(ctx context.Context, msg chat.Message) (*chat.Message, error)
	RecentMessages(ctx context.Context, room string, limit int) ([]chat.Message, error)
}

// Authenticator validates an opaque credential and resolves its username.
type Authenticator interface {
	Validate(token string) (string, error)
}

// Router validates client-originated events and fans them out into registry
// actions and store writes. Every failure is converted to a client-visible
// error event; none terminate the connection or the broker.
type Router struct {
	store  Store
	authn  Authenticator
	reg    *registry.Registry
	bus    mono.EventBus
	logger *slog.Logger
}

// NewRouter creates a router over the given collaborators.
func NewRouter(store Store, authn Authenticator, reg *registry.Registry) *Router {
	return &Router{
		store:  store,
		authn:  authn,
		reg:    reg,
		logger: slog.Default(),
	}
}

// SetEventBus attaches the internal event bus. Publishing is best-effort;
// the router works without a bus (tests, client-only tooling).
func (r *Router) SetEventBus(bus mono.EventBus) {
	r.bus = bus
}

// HandleEvent processes one inbound event from conn. Events from the same
// connection are handled strictly in receipt order because the transport's
// read loop calls this serially.
func (r *Router) HandleEvent(ctx context.Context, conn *Connection, ev chat.Event) {
	switch ev.Type {
	case chat.EventAuthenticate:
		r.handleAuthenticate(conn, ev)
	case chat.EventJoinRoom:
		r.handleJoin(ctx, conn, ev)
	case chat.EventChatMessage:
		r.handleChatMessage(ctx, conn, ev)
	case chat.EventSendFile:
		r.handleSendFile(ctx, conn, ev)
	case chat.EventLeave:
		r.leaveCurrentRoom(conn)
	default:
		r.sendError(conn, "unknown event type: "+ev.Type)
	}
}

// Disconnect completes the connection lifecycle on transport close:
// implicit leave if in a room, then the terminal state. Idempotent.
func (r *Router) Disconnect(conn *Connection) {
	username := conn.Username()
	room, wasInRoom := conn.Close()
	if !wasInRoom {
		return
	}

	r.reg.RemoveMember(room, conn.ConnID())
	r.reg.Broadcast(room, chat.Event{
		Type:     chat.EventUserLeft,
		Room:     room,
		Username: username,
		Message:  username + " left the room",
	}, conn.ConnID())
	r.publishUserLeft(room, conn.ConnID(), username)
}

func (r *Router) handleAuthenticate(conn *Connection, ev chat.Event) {
	username, err := r.authn.Validate(ev.Token)
	if err != nil {
		// The connection stays usable for a retry with a fresh token.
		r.logger.Warn("authentication failed", "connID", conn.ConnID(), "error", err)
		r.sendError(conn, "authentication failed: "+err.Error())
		return
	}

	if err := conn.Authenticate(username); err != nil {
		r.sendError(conn, err.Error())
		return
	}

	r.logger.Info("connection authenticated", "connID", conn.ConnID(), "username", username)
	_ = conn.Send(chat.Event{Type: chat.EventUsername, Username: username})
}

func (r *Router) handleJoin(ctx context.Context, conn *Connection, ev chat.Event) {
	if conn.State() == StateUnauthenticated {
		r.sendError(conn, "authenticate first")
		return
	}
	if ev.Room == "" {
		r.sendError(conn, "room name is required")
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	// Rooms are created via the administrative path only; joining an
	// unknown room fails and the connection keeps its prior state.
	exists, err := r.store.RoomExists(storeCtx, ev.Room)
	if err != nil {
		r.logger.Error("room lookup failed", "room", ev.Room, "error", err)
		r.sendError(conn, "could not join room: store unavailable")
		return
	}
	if !exists {
		r.sendError(conn, "room not found: "+ev.Room)
		return
	}
	if conn.Closed() {
		// Disconnected while the lookup was in flight; nothing to join.
		return
	}

	username := conn.Username()

	// Switching rooms is leave-then-join, never concurrent membership.
	if oldRoom, ok := conn.LeaveRoom(); ok {
		r.reg.RemoveMember(oldRoom, conn.ConnID())
		r.reg.Broadcast(oldRoom, chat.Event{
			Type:     chat.EventUserLeft,
			Room:     oldRoom,
			Username: username,
			Message:  username + " left the room",
		}, conn.ConnID())
		r.publishUserLeft(oldRoom, conn.ConnID(), username)
	}

	if err := conn.EnterRoom(ev.Room); err != nil {
		r.sendError(conn, err.Error())
		return
	}
	r.reg.AddMember(ev.Room, conn)

	r.reg.Broadcast(ev.Room, chat.Event{
		Type:     chat.EventUserJoined,
		Room:     ev.Room,
		Username: username,
		Message:  username + " joined the room",
	}, conn.ConnID())
	r.publishUserJoined(ev.Room, conn.ConnID(), username)

	_ = conn.Send(chat.Event{
		Type:    chat.EventJoined,
		Room:    ev.Room,
		Message: fmt.Sprintf("Welcome to %s, %s", ev.Room, username),
	})

	history, err := r.store.RecentMessages(storeCtx, ev.Room, 50)
	if err != nil {
		r.logger.Error("history fetch failed", "room", ev.Room, "error", err)
		r.sendError(conn, "could not fetch history")
		return
	}
	_ = conn.Send(chat.Event{Type: chat.EventHistory, Room: ev.Room, History: history})

	r.logger.Info("user joined room", "connID", conn.ConnID(), "username", username, "room", ev.Room)
}

func (r *Router) handleChatMessage(ctx context.Context, conn *Connection, ev chat.Event) {
	if !r.requireInRoom(conn, ev.Room) {
		return
	}
	if ev.Text == "" {
		r.sendError(conn, "message text is required")
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stored, err := r.store.AppendMessage(storeCtx, chat.Message{
		ID:       uuid.New().String(),
		Room:     ev.Room,
		Username: conn.Username(),
		Body:     ev.Text,
	})
	if err != nil {
		// The triggering event is dropped, not retried.
		r.logger.Error("message persist failed", "room", ev.Room, "error", err)
		r.sendError(conn, "could not send message")
		return
	}
	if conn.Closed() {
		return
	}

	// Chat messages echo to the sender as well; only presence excludes
	// the actor.
	r.reg.Broadcast(ev.Room, chat.Event{
		Type:      chat.EventChatMessage,
		Room:      ev.Room,
		Username:  stored.Username,
		Text:      stored.Username + ": " + stored.Body,
		Timestamp: stored.CreatedAt,
	})

	if r.bus != nil {
		err := events.MessageSentV1.Publish(r.bus, events.MessageSentEvent{
			MessageID: stored.ID,
			Room:      stored.Room,
			Username:  stored.Username,
			Body:      stored.Body,
			Timestamp: stored.CreatedAt,
		}, nil)
		if err != nil {
			r.logger.Warn("failed to publish MessageSent event", "error", err)
		}
	}
}

func (r *Router) handleSendFile(ctx context.Context, conn *Connection, ev chat.Event) {
	if !r.requireInRoom(conn, ev.Room) {
		return
	}
	if ev.Filename == "" || ev.Data == "" {
		r.sendError(conn, "filename and data are required")
		return
	}

	// The 10 MiB cap is enforced on the sending client; the broker only
	// rejects payloads it cannot decode.
	payload, err := base64.StdEncoding.DecodeString(ev.Data)
	if err != nil {
		r.sendError(conn, "invalid file payload: not valid base64")
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stored, err := r.store.AppendMessage(storeCtx, chat.Message{
		ID:       uuid.New().String(),
		Room:     ev.Room,
		Username: conn.Username(),
		Filename: ev.Filename,
	})
	if err != nil {
		r.logger.Error("file persist failed", "room", ev.Room, "error", err)
		r.sendError(conn, "could not send file")
		return
	}
	if conn.Closed() {
		return
	}

	r.reg.Broadcast(ev.Room, chat.Event{
		Type:      chat.EventFile,
		Room:      ev.Room,
		Username:  stored.Username,
		Filename:  stored.Filename,
		Data:      ev.Data,
		Timestamp: stored.CreatedAt,
	})

	if r.bus != nil {
		err := events.FileSentV1.Publish(r.bus, events.FileSentEvent{
			MessageID: stored.ID,
			Room:      stored.Room,
			Username:  stored.Username,
			Filename:  stored.Filename,
			Payload:   payload,
			Timestamp: stored.CreatedAt,
		}, nil)
		if err != nil {
			r.logger.Warn("failed to publish FileSent event", "error", err)
		}
	}
}

// leaveCurrentRoom handles an explicit leave. Always succeeds; leaving when
// not in a room is a no-op.
func (r *Router) leaveCurrentRoom(conn *Connection) {
	room, ok := conn.LeaveRoom()
	if !ok {
		return
	}

	username := conn.Username()
	r.reg.RemoveMember(room, conn.ConnID())
	r.reg.Broadcast(room, chat.Event{
		Type:     chat.EventUserLeft,
		Room:     room,
		Username: username,
		Message:  username + " left the room",
	}, conn.ConnID())
	r.publishUserLeft(room, conn.ConnID(), username)
}

// requireInRoom checks the InRoom precondition shared by chat_message and
// send_file: the connection must be in the room the event names.
func (r *Router) requireInRoom(conn *Connection, room string) bool {
	if conn.State() != StateInRoom {
		r.sendError(conn, "join a room first")
		return false
	}
	if room != conn.Room() {
		r.sendError(conn, "not in room: "+room)
		return false
	}
	return true
}

func (r *Router) sendError(conn *Connection, msg string) {
	_ = conn.Send(chat.Event{Type: chat.EventError, Error: msg})
}

func (r *Router) publishUserJoined(room, connID, username string) {
	if r.bus == nil {
		return
	}
	err := events.UserJoinedV1.Publish(r.bus, events.UserJoinedEvent{
		Room:      room,
		ConnID:    connID,
		Username:  username,
		Timestamp: time.Now(),
	}, nil)
	if err != nil {
		r.logger.Warn("failed to publish UserJoined event", "error", err)
	}
}

func (r *Router) publishUserLeft(room, connID, username string) {
	if r.bus == nil {
		return
	}
	err := events.UserLeftV1.Publish(r.bus, events.UserLeftEvent{
		Room:      room,
		ConnID:    connID,
		Username:  username,
		Timestamp: time.Now(),
	}, nil)
	if err != nil {
		r.logger.Warn("failed to publish UserLeft event", "error", err)
	}
}
