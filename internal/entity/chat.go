package entity

import "time"

// ChatRoom is the per-event room for ticket holders. Created lazily on first
// access; the unique constraint on event_id keeps concurrent creators from
// producing duplicates. The participant set is never stored, it is always
// derived from paid orders.
type ChatRoom struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is immutable once created. Feeds are chronological, with the id as
// a tiebreak for equal timestamps.
type Message struct {
	ID        int64     `json:"id" db:"id"`
	RoomID    int64     `json:"room_id" db:"room_id"`
	SenderID  int64     `json:"sender_id" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	SenderName string `json:"sender,omitempty" db:"-"`
}
