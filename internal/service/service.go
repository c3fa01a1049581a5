package service

import (
	"context"

	"event-ticketer/internal/entity"
)

type EventService interface {
	CreateEvent(ctx context.Context, actor *entity.User, req *CreateEventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, actor *entity.User, eventID int64, req *UpdateEventRequest) (*entity.Event, error)
	GetEvent(ctx context.Context, eventID int64) (*entity.Event, error)

	// ListPublished serves the public listing. Filters compose conjunctively;
	// only published events ever appear.
	ListPublished(ctx context.Context, filter *entity.EventFilter) ([]*entity.Event, error)

	// QueryEvents serves the strict paginated JSON API.
	QueryEvents(ctx context.Context, filter *entity.EventFilter, page, pageSize int) (*EventPage, error)

	// MyEvents shows an organizer their own events in every moderation
	// status, bypassing the publication filter.
	MyEvents(ctx context.Context, actor *entity.User) ([]*entity.Event, error)
}

type OrderService interface {
	PurchaseTicket(ctx context.Context, actor *entity.User, eventID int64, quantity int) (*entity.Order, error)
	GetOrder(ctx context.Context, actor *entity.User, orderID int64) (*entity.Order, error)
	ListMyOrders(ctx context.Context, actor *entity.User) ([]*entity.Order, error)
}

type CartService interface {
	GetCart(ctx context.Context, actor *entity.User) (*entity.Cart, error)
	AddToCart(ctx context.Context, actor *entity.User, eventID int64, quantity int) (*entity.CartItem, error)
	UpdateItemQuantity(ctx context.Context, actor *entity.User, itemID int64, quantity int) error

	// RemoveItem deletes the item and returns its event title for the
	// caller's confirmation message.
	RemoveItem(ctx context.Context, actor *entity.User, itemID int64) (string, error)

	// Checkout converts the whole cart into paid orders atomically.
	Checkout(ctx context.Context, actor *entity.User) ([]*entity.Order, error)
}

type ModerationService interface {
	Approve(ctx context.Context, actor *entity.User, eventID int64, notes string) (*entity.Event, error)
	Reject(ctx context.Context, actor *entity.User, eventID int64, notes string) (*entity.Event, error)

	// Queue lists events awaiting (or past) moderation. Empty status
	// defaults to pending.
	Queue(ctx context.Context, actor *entity.User, status entity.ModerationStatus) ([]*entity.Event, error)
}

type ChatService interface {
	CanAccess(ctx context.Context, user *entity.User, eventID int64) (bool, error)
	GetParticipants(ctx context.Context, actor *entity.User, eventID int64) ([]*entity.User, error)
	SendMessage(ctx context.Context, actor *entity.User, eventID int64, content string) (*entity.Message, error)
	ListMessages(ctx context.Context, actor *entity.User, eventID int64) ([]*entity.Message, error)
}

type CreateEventRequest struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description"`
	Date               string  `json:"date" binding:"required"` // YYYY-MM-DD
	Time               string  `json:"time" binding:"required"` // HH:MM:SS
	Venue              string  `json:"venue" binding:"required"`
	Latitude           *string `json:"latitude"`
	Longitude          *string `json:"longitude"`
	TicketPrice        string  `json:"ticket_price" binding:"required"`
	TicketAvailability int     `json:"ticket_availability" binding:"min=0"`
}

type UpdateEventRequest struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description"`
	Date               string  `json:"date" binding:"required"`
	Time               string  `json:"time" binding:"required"`
	Venue              string  `json:"venue" binding:"required"`
	Latitude           *string `json:"latitude"`
	Longitude          *string `json:"longitude"`
	TicketPrice        string  `json:"ticket_price" binding:"required"`
	TicketAvailability int     `json:"ticket_availability" binding:"min=0"`
}

// OrganizerResponse is the organizer block of a serialized event.
type OrganizerResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// EventResponse is the wire form of an event in the JSON API: ISO date,
// HH:MM:SS time, price as a decimal string, RFC 3339 timestamps.
type EventResponse struct {
	ID                 int64              `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Date               string             `json:"date"`
	Time               string             `json:"time"`
	Venue              string             `json:"venue"`
	TicketPrice        string             `json:"ticket_price"`
	TicketAvailability int                `json:"ticket_availability"`
	Organizer          *OrganizerResponse `json:"organizer"`
	IsPublished        bool               `json:"is_published"`
	CreatedAt          string             `json:"created_at"`
	UpdatedAt          string             `json:"updated_at"`
}

type EventPage struct {
	Events      []*EventResponse `json:"events"`
	TotalCount  int              `json:"total_count"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	TotalPages  int              `json:"total_pages"`
	HasNext     bool             `json:"has_next"`
	HasPrevious bool             `json:"has_previous"`
}
