package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the singleton pending-purchase container per user. Items reserve
// nothing: availability is only decremented when they convert into orders.
type Cart struct {
	ID        int64       `json:"id" db:"id"`
	UserID    int64       `json:"user_id" db:"user_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
	Items     []*CartItem `json:"items" db:"-"`
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// CartItem holds the quantity of one event in a cart. At most one row exists
// per (cart, event) pair; repeated adds increment the existing row.
type CartItem struct {
	ID       int64     `json:"id" db:"id"`
	CartID   int64     `json:"cart_id" db:"cart_id"`
	EventID  int64     `json:"event_id" db:"event_id"`
	Quantity int       `json:"quantity" db:"quantity"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`

	// Joined from the events table for display and totals.
	EventTitle string          `json:"event_title" db:"-"`
	EventPrice decimal.Decimal `json:"event_price" db:"-"`
}

func (i *CartItem) TotalPrice() decimal.Decimal {
	return i.EventPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
