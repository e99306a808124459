package client

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/example/terminal-chat/domain/chat"
)

// fakeBroker accepts one WebSocket connection, answers the authenticate
// handshake, and records every later frame.
type fakeBroker struct {
	server *httptest.Server
	frames chan chat.Event
}

func newFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()
	fb := &fakeBroker{frames: make(chan chat.Event, 16)}
	upgrader := websocket.Upgrader{}

	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var ev chat.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Type != chat.EventAuthenticate {
			_ = conn.WriteJSON(chat.Event{Type: chat.EventError, Error: "expected authenticate"})
			return
		}
		if ev.Token == "bad-token" {
			_ = conn.WriteJSON(chat.Event{Type: chat.EventError, Error: "authentication failed"})
			return
		}
		_ = conn.WriteJSON(chat.Event{Type: chat.EventUsername, Username: "alice"})

		for {
			var next chat.Event
			if err := conn.ReadJSON(&next); err != nil {
				return
			}
			fb.frames <- next
		}
	}))
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBroker) wsURL() string {
	return "ws" + strings.TrimPrefix(fb.server.URL, "http")
}

func TestDial_Authenticates(t *testing.T) {
	fb := newFakeBroker(t)

	c, err := Dial(context.Background(), fb.wsURL(), "good-token")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "alice", c.Username())
}

func TestDial_RejectedToken(t *testing.T) {
	fb := newFakeBroker(t)

	_, err := Dial(context.Background(), fb.wsURL(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestSendFile_EncodesPayload(t *testing.T) {
	fb := newFakeBroker(t)

	c, err := Dial(context.Background(), fb.wsURL(), "good-token")
	require.NoError(t, err)
	defer c.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello there"), 0o644))

	require.NoError(t, c.SendFile("general", path))

	frame := <-fb.frames
	assert.Equal(t, chat.EventSendFile, frame.Type)
	assert.Equal(t, "general", frame.Room)
	assert.Equal(t, "notes.txt", frame.Filename)

	decoded, err := base64.StdEncoding.DecodeString(frame.Data)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello there"), decoded)
}

func TestSendFile_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.bin")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	// The size check fires before any frame is built, so a zero-value
	// client is enough: a write attempt would panic on the nil conn.
	var c Client
	err = c.SendFile("general", path)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestSendFile_Missing(t *testing.T) {
	var c Client
	err := c.SendFile("general", filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFileTooLarge))
}
