package chat

import "time"

// Event types sent from client to broker.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join_room"
	EventChatMessage  = "chat_message"
	EventSendFile     = "send_file"
	EventLeave        = "leave"
)

// Event types sent from broker to client. EventChatMessage and EventSendFile
// reuse the inbound names on the way out; the remaining outbound types are
// broker-originated only.
const (
	EventUsername   = "username"
	EventJoined     = "joined"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventFile       = "file"
	EventHistory    = "history"
	EventError      = "error"
)

// Event is the JSON envelope exchanged over the client-broker channel.
// Only the fields relevant to a given Type are populated.
type Event struct {
	Type string `json:"type"`

	// Client-originated fields.
	Token    string `json:"token,omitempty"`
	Room     string `json:"room,omitempty"`
	Text     string `json:"text,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data,omitempty"` // base64-encoded file payload

	// Broker-originated fields. For chat_message fan-out Text carries the
	// combined "username: body" line; Username is set on file events so the
	// receiver can attribute the download.
	Username  string    `json:"username,omitempty"`
	Message   string    `json:"message,omitempty"`
	History   []Message `json:"history,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Error     string    `json:"error,omitempty"`
}
