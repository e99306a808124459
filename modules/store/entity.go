package store

import "time"

// ChatRoom is the persisted form of a room. Rooms are created through the
// administrative HTTP path, never implicitly by joining.
type ChatRoom struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for ChatRoom.
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// ChatMessage is the persisted form of a message. Text messages carry Body;
// file transfers carry Filename and leave Body empty. Messages are immutable
// once written.
type ChatMessage struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Room      string    `gorm:"size:100;index;not null" json:"room"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Body      string    `gorm:"size:5000" json:"body,omitempty"`
	Filename  string    `gorm:"size:255" json:"filename,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for ChatMessage.
func (ChatMessage) TableName() string {
	return "chat_messages"
}
