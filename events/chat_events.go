package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted after a chat message has been persisted and
// fanned out to its room.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// FileSentEvent is emitted after a file has been fanned out to its room.
// Payload carries the decoded file bytes for async archival.
type FileSentEvent struct {
	MessageID string    `json:"message_id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Filename  string    `json:"filename"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a connection joins a room.
type UserJoinedEvent struct {
	Room      string    `json:"room"`
	ConnID    string    `json:"conn_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a connection leaves a room, explicitly or
// through disconnect.
type UserLeftEvent struct {
	Room      string    `json:"room"`
	ConnID    string    `json:"conn_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)

	FileSentV1 = helper.EventDefinition[FileSentEvent](
		"chat",
		"FileSent",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)
)
