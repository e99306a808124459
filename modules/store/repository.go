package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	chat "github.com/example/terminal-chat/domain/chat"
)

// HistoryLimit is the maximum number of messages returned on room join.
const HistoryLimit = 50

var (
	// ErrRoomExists is returned when creating a room whose name is taken.
	ErrRoomExists = errors.New("chat room already exists")
	// ErrRoomNotFound is returned when the named room does not exist.
	ErrRoomNotFound = errors.New("chat room not found")
)

// Repository provides access to room and message storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository on top of db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRoom persists a new room. The name must be unique.
func (r *Repository) CreateRoom(ctx context.Context, name string) (*chat.Room, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ChatRoom{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check room: %w", err)
	}
	if count > 0 {
		return nil, ErrRoomExists
	}

	row := ChatRoom{Name: name, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &chat.Room{Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

// RoomExists reports whether the named room has been created.
func (r *Repository) RoomExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ChatRoom{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check room: %w", err)
	}
	return count > 0, nil
}

// ListRooms returns the names of every room, oldest first.
func (r *Repository) ListRooms(ctx context.Context) ([]string, error) {
	var rows []ChatRoom
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

// AppendMessage persists a message. CreatedAt is assigned at receipt if the
// caller left it zero; the stored message is returned.
func (r *Repository) AppendMessage(ctx context.Context, msg chat.Message) (*chat.Message, error) {
	row := ChatMessage{
		ID:        msg.ID,
		Room:      msg.Room,
		Username:  msg.Username,
		Body:      msg.Body,
		Filename:  msg.Filename,
		CreatedAt: msg.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	stored := toDomain(row)
	return &stored, nil
}

// RecentMessages returns up to limit messages for the room, capped at
// HistoryLimit, ordered oldest to newest. Messages from other rooms are
// never included.
func (r *Repository) RecentMessages(ctx context.Context, room string, limit int) ([]chat.Message, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}

	// Fetch the newest rows first, then reverse so callers see them in
	// replay order.
	var rows []ChatMessage
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := make([]chat.Message, len(rows))
	for i, row := range rows {
		messages[len(rows)-1-i] = toDomain(row)
	}
	return messages, nil
}

func toDomain(row ChatMessage) chat.Message {
	return chat.Message{
		ID:        row.ID,
		Room:      row.Room,
		Username:  row.Username,
		Body:      row.Body,
		Filename:  row.Filename,
		CreatedAt: row.CreatedAt,
	}
}
