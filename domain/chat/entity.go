package chat

import "time"

// Room represents a chat room.
type Room struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Message represents a persisted chat message. A message carries either
// text in Body or a file reference in Filename, never both.
type Message struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Body      string    `json:"body,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsFile reports whether the message is a file transfer rather than text.
func (m Message) IsFile() bool {
	return m.Filename != ""
}
