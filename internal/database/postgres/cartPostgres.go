package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"event-ticketer/internal/entity"
)

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreateByUser returns the user's singleton cart with items loaded.
// Creation races are settled by the unique constraint on user_id: a losing
// inserter reads the winner's row instead of erroring.
func (r *cartRepository) GetOrCreateByUser(ctx context.Context, userID int64) (*entity.Cart, error) {
	query := `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, created_at, updated_at
	`

	var cart entity.Cart
	err := r.db.QueryRowContext(ctx, query, userID, time.Now()).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cart *entity.Cart) error {
	query := `
		SELECT i.id, i.cart_id, i.event_id, i.quantity, i.added_at, e.title, e.ticket_price
		FROM cart_items i
		JOIN events e ON i.event_id = e.id
		WHERE i.cart_id = $1
		ORDER BY i.added_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = nil
	for rows.Next() {
		var item entity.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.EventID,
			&item.Quantity,
			&item.AddedAt,
			&item.EventTitle,
			&item.EventPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, &item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating cart items: %w", err)
	}
	return nil
}

// AddItem inserts or increments the (cart, event) row. The event row is
// locked first so the combined-quantity check runs against live availability.
func (r *cartRepository) AddItem(ctx context.Context, cartID, eventID int64, quantity int) (*entity.CartItem, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		title        string
		availability int
	)
	query := `SELECT title, ticket_availability FROM events WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, eventID).Scan(&title, &availability)
	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	if availability == 0 {
		return nil, entity.ErrSoldOut
	}

	var existing int
	query = `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = $1 AND event_id = $2`
	if err := tx.QueryRowContext(ctx, query, cartID, eventID).Scan(&existing); err != nil {
		return nil, fmt.Errorf("failed to check existing cart quantity: %w", err)
	}

	if existing+quantity > availability {
		return nil, &entity.InsufficientAvailabilityError{
			EventTitle: title,
			Requested:  existing + quantity,
			Remaining:  availability,
		}
	}

	// One row per (cart, event): repeated adds increment the existing row.
	query = `
		INSERT INTO cart_items (cart_id, event_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, event_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, event_id, quantity, added_at
	`

	var item entity.CartItem
	err = tx.QueryRowContext(ctx, query, cartID, eventID, quantity, time.Now()).Scan(
		&item.ID,
		&item.CartID,
		&item.EventID,
		&item.Quantity,
		&item.AddedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	item.EventTitle = title
	return &item, nil
}

func (r *cartRepository) GetItem(ctx context.Context, itemID int64) (*entity.CartItem, error) {
	query := `
		SELECT i.id, i.cart_id, i.event_id, i.quantity, i.added_at, e.title, e.ticket_price
		FROM cart_items i
		JOIN events e ON i.event_id = e.id
		WHERE i.id = $1
	`

	var item entity.CartItem
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID,
		&item.CartID,
		&item.EventID,
		&item.Quantity,
		&item.AddedAt,
		&item.EventTitle,
		&item.EventPrice,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// UpdateItemQuantity overwrites the stored quantity after re-checking the
// event's live availability under a row lock.
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var eventID int64
	query := `SELECT event_id FROM cart_items WHERE id = $1`
	err = tx.QueryRowContext(ctx, query, itemID).Scan(&eventID)
	if err == sql.ErrNoRows {
		return entity.ErrCartItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get cart item: %w", err)
	}

	var (
		title        string
		availability int
	)
	query = `SELECT title, ticket_availability FROM events WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, eventID).Scan(&title, &availability); err != nil {
		return fmt.Errorf("failed to lock event: %w", err)
	}

	if quantity > availability {
		return &entity.InsufficientAvailabilityError{
			EventTitle: title,
			Requested:  quantity,
			Remaining:  availability,
		}
	}

	query = `UPDATE cart_items SET quantity = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, quantity, itemID); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, itemID int64) error {
	query := `DELETE FROM cart_items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrCartItemNotFound
	}
	return nil
}

// Checkout converts all cart items into paid orders in one transaction.
// Each event goes through the same lock-and-check as a direct purchase; the
// first violation rolls everything back. Items are processed in event id
// order so concurrent checkouts over overlapping events always acquire the
// row locks in the same order and cannot deadlock.
func (r *cartRepository) Checkout(ctx context.Context, cartID, attendeeID int64) ([]*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, event_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY event_id ASC
	`
	rows, err := tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}

	type pendingItem struct {
		id       int64
		eventID  int64
		quantity int
	}
	var items []pendingItem
	for rows.Next() {
		var item pendingItem
		if err := rows.Scan(&item.id, &item.eventID, &item.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	rows.Close()

	if len(items) == 0 {
		return nil, entity.ErrCartEmpty
	}

	var orders []*entity.Order
	for _, item := range items {
		order, err := purchaseInTx(ctx, tx, attendeeID, item.eventID, item.quantity)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to empty cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return orders, nil
}
