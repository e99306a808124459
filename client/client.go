package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gorilla/websocket"

	chat "github.com/example/terminal-chat/domain/chat"
)

// MaxFileSize is the largest file the client will send inline.
const MaxFileSize = 10 << 20 // 10 MiB

// ErrFileTooLarge is returned by SendFile for files over MaxFileSize.
// No frame is written to the broker in that case.
var ErrFileTooLarge = errors.New("file exceeds the 10 MiB limit")

// Client is one authenticated WebSocket session with the broker.
type Client struct {
	conn     *websocket.Conn
	username string

	writeMu sync.Mutex

	events chan chat.Event

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the broker's WebSocket endpoint and authenticates with
// the token. The returned client is ready to join a room; broker events
// arrive on Events.
func Dial(ctx context.Context, wsURL, token string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan chat.Event, 64),
		done:   make(chan struct{}),
	}

	if err := c.authenticate(token); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go c.readPump()
	return c, nil
}

// authenticate sends the token and waits for the broker's verdict. The
// read pump is not running yet, so the reply is read inline.
func (c *Client) authenticate(token string) error {
	if err := c.write(chat.Event{Type: chat.EventAuthenticate, Token: token}); err != nil {
		return fmt.Errorf("send authenticate: %w", err)
	}

	var ev chat.Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return fmt.Errorf("read authenticate reply: %w", err)
	}

	switch ev.Type {
	case chat.EventUsername:
		c.username = ev.Username
		return nil
	case chat.EventError:
		return fmt.Errorf("authenticate: %s", ev.Error)
	default:
		return fmt.Errorf("authenticate: unexpected reply type %q", ev.Type)
	}
}

// Username returns the identity the broker bound this session to.
func (c *Client) Username() string {
	return c.username
}

// Events returns the stream of broker events. The channel is closed when
// the connection ends.
func (c *Client) Events() <-chan chat.Event {
	return c.events
}

// Join asks the broker to place this session in the room. The joined ack,
// presence fan-out, and history arrive on Events.
func (c *Client) Join(room string) error {
	return c.write(chat.Event{Type: chat.EventJoinRoom, Room: room})
}

// SendText sends a chat message to the room. The broker echoes the line
// back on Events; nothing is rendered locally until then.
func (c *Client) SendText(room, text string) error {
	return c.write(chat.Event{Type: chat.EventChatMessage, Room: room, Text: text})
}

// SendFile reads the file at path and sends it inline. Files larger than
// MaxFileSize are rejected locally with ErrFileTooLarge.
func (c *Client) SendFile(room, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("send file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return ErrFileTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("send file: %w", err)
	}

	return c.write(chat.Event{
		Type:     chat.EventSendFile,
		Room:     room,
		Filename: filepath.Base(path),
		Data:     base64.StdEncoding.EncodeToString(data),
	})
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) write(ev chat.Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(ev)
}

// readPump forwards broker events to the events channel until the
// connection ends. Receipt order is preserved.
func (c *Client) readPump() {
	defer close(c.events)
	for {
		var ev chat.Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			return
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}
