package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
)

type Event struct {
	ID                 int64               `json:"id" db:"id"`
	Title              string              `json:"title" db:"title"`
	Description        string              `json:"description" db:"description"`
	Date               time.Time           `json:"date" db:"date"`
	StartTime          string              `json:"time" db:"start_time"` // HH:MM:SS
	Venue              string              `json:"venue" db:"venue"`
	Latitude           decimal.NullDecimal `json:"latitude" db:"latitude"`
	Longitude          decimal.NullDecimal `json:"longitude" db:"longitude"`
	TicketPrice        decimal.Decimal     `json:"ticket_price" db:"ticket_price"`
	TicketAvailability int                 `json:"ticket_availability" db:"ticket_availability"`
	OrganizerID        int64               `json:"organizer_id" db:"organizer_id"`
	IsPublished        bool                `json:"is_published" db:"is_published"`
	ModerationStatus   ModerationStatus    `json:"moderation_status" db:"moderation_status"`
	ModerationNotes    string              `json:"moderation_notes" db:"moderation_notes"`
	ModeratedBy        *int64              `json:"moderated_by" db:"moderated_by"`
	ModeratedAt        *time.Time          `json:"moderated_at" db:"moderated_at"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`

	// Organizer is populated by queries that join the users table.
	Organizer *User `json:"organizer,omitempty" db:"-"`
}

// IsApproved reports whether the event passed moderation and is publicly
// visible. Both conditions must hold independently: an approved event whose
// published flag was cleared out of band does not count.
func (e *Event) IsApproved() bool {
	return e.ModerationStatus == ModerationStatusApproved && e.IsPublished
}

// EventFilter narrows public event listings. All set fields compose
// conjunctively. Name and Location match as case-insensitive substrings,
// price bounds are inclusive.
type EventFilter struct {
	Name     string
	Location string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

func (f *EventFilter) Empty() bool {
	return f == nil || (f.Name == "" && f.Location == "" && f.PriceMin == nil && f.PriceMax == nil)
}
