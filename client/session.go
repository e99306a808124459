package client

import (
	"context"
	"fmt"
)

// Session ties the REST client and the WebSocket client together for one
// user. Switching rooms reconnects: each session is in at most one room.
type Session struct {
	rest     *RestClient
	wsURL    string
	username string

	ws   *Client
	room string
}

// NewSession creates a session for the username. Connect must be called
// before any chat operation.
func NewSession(rest *RestClient, wsURL, username string) *Session {
	return &Session{rest: rest, wsURL: wsURL, username: username}
}

// Connect mints a token and opens an authenticated WebSocket connection.
func (s *Session) Connect(ctx context.Context) error {
	token, err := s.rest.GetToken(ctx, s.username)
	if err != nil {
		return err
	}

	ws, err := Dial(ctx, s.wsURL, token)
	if err != nil {
		return err
	}
	s.ws = ws
	return nil
}

// Join enters a room on the current connection.
func (s *Session) Join(room string) error {
	if s.ws == nil {
		return fmt.Errorf("join: not connected")
	}
	if err := s.ws.Join(room); err != nil {
		return fmt.Errorf("join %s: %w", room, err)
	}
	s.room = room
	return nil
}

// SwitchRoom moves the session to another room: the old connection is
// closed, a fresh token is minted, and a new connection joins the target.
func (s *Session) SwitchRoom(ctx context.Context, room string) error {
	if s.ws != nil {
		_ = s.ws.Close()
		s.ws = nil
	}
	if err := s.Connect(ctx); err != nil {
		return fmt.Errorf("switch room: %w", err)
	}
	return s.Join(room)
}

// Room returns the room the session last joined.
func (s *Session) Room() string {
	return s.room
}

// Username returns the session's user.
func (s *Session) Username() string {
	return s.username
}

// Client returns the live WebSocket client, or nil before Connect.
func (s *Session) Client() *Client {
	return s.ws
}

// SendText sends a chat message to the current room.
func (s *Session) SendText(text string) error {
	if s.ws == nil {
		return fmt.Errorf("send: not connected")
	}
	return s.ws.SendText(s.room, text)
}

// SendFile sends the file at path to the current room.
func (s *Session) SendFile(path string) error {
	if s.ws == nil {
		return fmt.Errorf("send file: not connected")
	}
	return s.ws.SendFile(s.room, path)
}

// Close tears the session down.
func (s *Session) Close() error {
	if s.ws == nil {
		return nil
	}
	return s.ws.Close()
}
