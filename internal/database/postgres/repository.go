package repository

import (
	"context"

	"event-ticketer/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error

	// Listing and search
	ListPublished(ctx context.Context, filter *entity.EventFilter) ([]*entity.Event, error)
	QueryPublished(ctx context.Context, filter *entity.EventFilter, limit, offset int) ([]*entity.Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID int64) ([]*entity.Event, error)

	// Moderation
	ListByModerationStatus(ctx context.Context, status entity.ModerationStatus) ([]*entity.Event, error)
	SetModeration(ctx context.Context, event *entity.Event) error
}

type OrderRepository interface {
	// CreatePurchase creates a paid order and decrements the event's
	// availability as one transaction. The availability is re-read under a
	// row lock inside the transaction, so two concurrent purchases can never
	// both succeed past the limit.
	CreatePurchase(ctx context.Context, attendeeID, eventID int64, quantity int) (*entity.Order, error)

	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	ListByAttendee(ctx context.Context, attendeeID int64) ([]*entity.Order, error)
	HasPaidOrder(ctx context.Context, userID, eventID int64) (bool, error)
}

type CartRepository interface {
	// GetOrCreateByUser returns the user's singleton cart with items loaded,
	// creating an empty one on first access.
	GetOrCreateByUser(ctx context.Context, userID int64) (*entity.Cart, error)

	// AddItem inserts or increments the (cart, event) row, failing if the
	// combined quantity would exceed the event's live availability.
	AddItem(ctx context.Context, cartID, eventID int64, quantity int) (*entity.CartItem, error)

	GetItem(ctx context.Context, itemID int64) (*entity.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error

	// Checkout converts every cart item into a paid order in one transaction,
	// re-checking each event's availability under a row lock. Any violation
	// aborts the whole conversion.
	Checkout(ctx context.Context, cartID, attendeeID int64) ([]*entity.Order, error)
}

type ChatRepository interface {
	GetOrCreateRoom(ctx context.Context, eventID int64) (*entity.ChatRoom, error)
	CreateMessage(ctx context.Context, roomID, senderID int64, content string) (*entity.Message, error)
	ListMessages(ctx context.Context, roomID int64) ([]*entity.Message, error)
	ListParticipants(ctx context.Context, eventID int64) ([]*entity.User, error)
}
