package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"event-ticketer/internal/entity"

	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreatePurchase creates a paid order and decrements availability atomically.
// The event row is locked with FOR UPDATE so the availability check always
// sees the live value, not a stale snapshot.
func (r *orderRepository) CreatePurchase(ctx context.Context, attendeeID, eventID int64, quantity int) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := purchaseInTx(ctx, tx, attendeeID, eventID, quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}

// purchaseInTx performs the lock, check, insert and decrement inside the
// caller's transaction. Shared with the cart checkout path.
func purchaseInTx(ctx context.Context, tx *sql.Tx, attendeeID, eventID int64, quantity int) (*entity.Order, error) {
	var (
		title        string
		price        decimal.Decimal
		availability int
	)
	query := `
		SELECT title, ticket_price, ticket_availability
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	err := tx.QueryRowContext(ctx, query, eventID).Scan(&title, &price, &availability)
	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	if availability == 0 {
		return nil, entity.ErrSoldOut
	}
	if quantity > availability {
		return nil, &entity.InsufficientAvailabilityError{
			EventTitle: title,
			Requested:  quantity,
			Remaining:  availability,
		}
	}

	now := time.Now()
	order := &entity.Order{
		AttendeeID: attendeeID,
		EventID:    eventID,
		Quantity:   quantity,
		UnitPrice:  price,
		Status:     entity.OrderStatusPaid,
		CreatedAt:  now,
		UpdatedAt:  now,
		EventTitle: title,
	}

	query = `
		INSERT INTO orders (attendee_id, event_id, quantity, unit_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		order.AttendeeID,
		order.EventID,
		order.Quantity,
		order.UnitPrice,
		order.Status,
		now,
		now,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	query = `UPDATE events SET ticket_availability = ticket_availability - $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, quantity, now, eventID); err != nil {
		return nil, fmt.Errorf("failed to decrement availability: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	query := `
		SELECT o.id, o.attendee_id, o.event_id, o.quantity, o.unit_price,
		       o.status, o.created_at, o.updated_at, e.title
		FROM orders o
		JOIN events e ON o.event_id = e.id
		WHERE o.id = $1
	`

	var order entity.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.AttendeeID,
		&order.EventID,
		&order.Quantity,
		&order.UnitPrice,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.EventTitle,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) ListByAttendee(ctx context.Context, attendeeID int64) ([]*entity.Order, error) {
	query := `
		SELECT o.id, o.attendee_id, o.event_id, o.quantity, o.unit_price,
		       o.status, o.created_at, o.updated_at, e.title
		FROM orders o
		JOIN events e ON o.event_id = e.id
		WHERE o.attendee_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		var order entity.Order
		err := rows.Scan(
			&order.ID,
			&order.AttendeeID,
			&order.EventID,
			&order.Quantity,
			&order.UnitPrice,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.EventTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) HasPaidOrder(ctx context.Context, userID, eventID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM orders WHERE attendee_id = $1 AND event_id = $2 AND status = 'paid'
	)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check paid order: %w", err)
	}
	return exists, nil
}
