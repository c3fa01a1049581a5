package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"event-ticketer/internal/entity"
)

type chatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

// GetOrCreateRoom lazily creates the event's chat room. The unique constraint
// on event_id is the sole arbiter under concurrent first access: the losing
// inserter falls through to reading the winner's row.
func (r *chatRepository) GetOrCreateRoom(ctx context.Context, eventID int64) (*entity.ChatRoom, error) {
	query := `
		INSERT INTO chat_rooms (event_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (event_id) DO UPDATE SET updated_at = chat_rooms.updated_at
		RETURNING id, event_id, created_at, updated_at
	`

	var room entity.ChatRoom
	err := r.db.QueryRowContext(ctx, query, eventID, time.Now()).Scan(
		&room.ID,
		&room.EventID,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create chat room: %w", err)
	}
	return &room, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, roomID, senderID int64, content string) (*entity.Message, error) {
	query := `
		INSERT INTO messages (room_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now()
	message := &entity.Message{
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}

	err := r.db.QueryRowContext(ctx, query, roomID, senderID, content, now).Scan(&message.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}

// ListMessages returns the room's chronological feed. The id tiebreak keeps
// the order stable when timestamps collide.
func (r *chatRepository) ListMessages(ctx context.Context, roomID int64) ([]*entity.Message, error) {
	query := `
		SELECT m.id, m.room_id, m.sender_id, m.content, m.created_at, u.username
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.room_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		var message entity.Message
		err := rows.Scan(
			&message.ID,
			&message.RoomID,
			&message.SenderID,
			&message.Content,
			&message.CreatedAt,
			&message.SenderName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// ListParticipants derives the room membership from paid orders. Nothing is
// stored, so the set can never drift from the order table.
func (r *chatRepository) ListParticipants(ctx context.Context, eventID int64) ([]*entity.User, error) {
	query := `
		SELECT DISTINCT u.id, u.username, u.display_name, u.email, u.role, u.created_at
		FROM users u
		JOIN orders o ON o.attendee_id = u.id
		WHERE o.event_id = $1 AND o.status = 'paid'
		ORDER BY u.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var user entity.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.DisplayName,
			&user.Email,
			&user.Role,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return users, nil
}
