package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order records a completed ticket purchase. UnitPrice is a snapshot of the
// event's price at purchase time and never changes afterwards, so later price
// edits do not rewrite history.
type Order struct {
	ID         int64           `json:"id" db:"id"`
	AttendeeID int64           `json:"attendee_id" db:"attendee_id"`
	EventID    int64           `json:"event_id" db:"event_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	Status     OrderStatus     `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`

	EventTitle string `json:"event_title,omitempty" db:"-"`
}

func (o *Order) TotalPrice() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
