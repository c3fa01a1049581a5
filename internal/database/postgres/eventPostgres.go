package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"event-ticketer/internal/entity"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `
	e.id, e.title, e.description, e.date, e.start_time, e.venue,
	e.latitude, e.longitude, e.ticket_price, e.ticket_availability,
	e.organizer_id, e.is_published, e.moderation_status, e.moderation_notes,
	e.moderated_by, e.moderated_at, e.created_at, e.updated_at,
	u.id, u.username, u.display_name, u.email, u.role, u.created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*entity.Event, error) {
	var event entity.Event
	var organizer entity.User
	var notes sql.NullString
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.StartTime,
		&event.Venue,
		&event.Latitude,
		&event.Longitude,
		&event.TicketPrice,
		&event.TicketAvailability,
		&event.OrganizerID,
		&event.IsPublished,
		&event.ModerationStatus,
		&notes,
		&event.ModeratedBy,
		&event.ModeratedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
		&organizer.ID,
		&organizer.Username,
		&organizer.DisplayName,
		&organizer.Email,
		&organizer.Role,
		&organizer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.ModerationNotes = notes.String
	event.Organizer = &organizer
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (
			title, description, date, start_time, venue, latitude, longitude,
			ticket_price, ticket_availability, organizer_id, is_published,
			moderation_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.StartTime,
		event.Venue,
		event.Latitude,
		event.Longitude,
		event.TicketPrice,
		event.TicketAvailability,
		event.OrganizerID,
		false,
		entity.ModerationStatusPending,
		now,
		now,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	event.IsPublished = false
	event.ModerationStatus = entity.ModerationStatusPending
	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON e.organizer_id = u.id
		WHERE e.id = $1
	`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, start_time = $4, venue = $5,
		    latitude = $6, longitude = $7, ticket_price = $8,
		    ticket_availability = $9, is_published = $10, moderation_status = $11,
		    updated_at = $12
		WHERE id = $13
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.StartTime,
		event.Venue,
		event.Latitude,
		event.Longitude,
		event.TicketPrice,
		event.TicketAvailability,
		event.IsPublished,
		event.ModerationStatus,
		now,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	event.UpdatedAt = now
	return nil
}

// buildFilterClauses appends WHERE fragments for the set filter fields.
// Placeholders start after the already-collected args.
func buildFilterClauses(filter *entity.EventFilter, args []interface{}) (string, []interface{}) {
	clause := ""
	if filter == nil {
		return clause, args
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		clause += fmt.Sprintf(" AND e.title ILIKE $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		clause += fmt.Sprintf(" AND e.venue ILIKE $%d", len(args))
	}
	if filter.PriceMin != nil {
		args = append(args, *filter.PriceMin)
		clause += fmt.Sprintf(" AND e.ticket_price >= $%d", len(args))
	}
	if filter.PriceMax != nil {
		args = append(args, *filter.PriceMax)
		clause += fmt.Sprintf(" AND e.ticket_price <= $%d", len(args))
	}
	return clause, args
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*entity.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) ListPublished(ctx context.Context, filter *entity.EventFilter) ([]*entity.Event, error) {
	clause, args := buildFilterClauses(filter, nil)
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON e.organizer_id = u.id
		WHERE e.is_published = TRUE` + clause + `
		ORDER BY e.created_at DESC
	`
	return r.queryEvents(ctx, query, args...)
}

func (r *eventRepository) QueryPublished(ctx context.Context, filter *entity.EventFilter, limit, offset int) ([]*entity.Event, int, error) {
	clause, args := buildFilterClauses(filter, nil)

	countQuery := `SELECT COUNT(*) FROM events e WHERE e.is_published = TRUE` + clause
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON e.organizer_id = u.id
		WHERE e.is_published = TRUE` + clause + `
		ORDER BY e.created_at DESC
		LIMIT $` + fmt.Sprint(limitPos) + ` OFFSET $` + fmt.Sprint(offsetPos)

	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID int64) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON e.organizer_id = u.id
		WHERE e.organizer_id = $1
		ORDER BY e.created_at DESC
	`
	return r.queryEvents(ctx, query, organizerID)
}

func (r *eventRepository) ListByModerationStatus(ctx context.Context, status entity.ModerationStatus) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN users u ON e.organizer_id = u.id
		WHERE e.moderation_status = $1
		ORDER BY e.created_at DESC
	`
	return r.queryEvents(ctx, query, status)
}

// SetModeration persists a moderation decision. Last writer wins, no version
// column is kept.
func (r *eventRepository) SetModeration(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET moderation_status = $1, moderation_notes = $2, moderated_by = $3,
		    moderated_at = $4, is_published = $5, updated_at = $6
		WHERE id = $7
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		event.ModerationStatus,
		event.ModerationNotes,
		event.ModeratedBy,
		event.ModeratedAt,
		event.IsPublished,
		now,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to set moderation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	event.UpdatedAt = now
	return nil
}
