package service

import (
	"context"
	"fmt"
	"time"

	repository "event-ticketer/internal/database/postgres"
	rediscache "event-ticketer/internal/database/redis"
	"event-ticketer/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type eventService struct {
	eventRepo   repository.EventRepository
	cache       *rediscache.EventCache
	resetOnEdit bool
}

// NewEventService creates the event catalog service. cache may be nil.
// resetOnEdit controls whether an organizer edit sends an approved event back
// to pending moderation.
func NewEventService(eventRepo repository.EventRepository, cache *rediscache.EventCache, resetOnEdit bool) EventService {
	return &eventService{
		eventRepo:   eventRepo,
		cache:       cache,
		resetOnEdit: resetOnEdit,
	}
}

func parseEventFields(event *entity.Event, title, description, date, startTime, venue, price string, lat, lng *string, availability int) error {
	if availability < 0 {
		return entity.NewValidationError("ticket availability cannot be negative")
	}

	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return entity.NewValidationError("invalid date %q, expected YYYY-MM-DD", date)
	}
	if _, err := time.Parse(timeLayout, startTime); err != nil {
		return entity.NewValidationError("invalid time %q, expected HH:MM:SS", startTime)
	}

	ticketPrice, err := decimal.NewFromString(price)
	if err != nil {
		return entity.NewValidationError("invalid ticket price %q", price)
	}
	if ticketPrice.IsNegative() {
		return entity.NewValidationError("ticket price cannot be negative")
	}

	var latitude, longitude decimal.NullDecimal
	if lat != nil {
		latitude.Decimal, err = decimal.NewFromString(*lat)
		if err != nil {
			return entity.NewValidationError("invalid latitude %q", *lat)
		}
		latitude.Valid = true
	}
	if lng != nil {
		longitude.Decimal, err = decimal.NewFromString(*lng)
		if err != nil {
			return entity.NewValidationError("invalid longitude %q", *lng)
		}
		longitude.Valid = true
	}

	event.Title = title
	event.Description = description
	event.Date = day
	event.StartTime = startTime
	event.Venue = venue
	event.Latitude = latitude
	event.Longitude = longitude
	event.TicketPrice = ticketPrice.Round(2)
	event.TicketAvailability = availability
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, actor *entity.User, req *CreateEventRequest) (*entity.Event, error) {
	if actor == nil {
		return nil, entity.ErrUnauthenticated
	}
	if !actor.IsOrganizer() {
		return nil, entity.ErrPermissionDenied
	}

	event := &entity.Event{OrganizerID: actor.ID}
	if err := parseEventFields(event,
		req.Title, req.Description, req.Date, req.Time, req.Venue,
		req.TicketPrice, req.Latitude, req.Longitude, req.TicketAvailability,
	); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":  event.ID,
		"organizer": actor.ID,
	}).Info("Event created, pending moderation")

	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor *entity.User, eventID int64, req *UpdateEventRequest) (*entity.Event, error) {
	if actor == nil {
		return nil, entity.ErrUnauthenticated
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// Only the organizing user may edit descriptive fields.
	if event.OrganizerID != actor.ID {
		return nil, entity.ErrPermissionDenied
	}

	if err := parseEventFields(event,
		req.Title, req.Description, req.Date, req.Time, req.Venue,
		req.TicketPrice, req.Latitude, req.Longitude, req.TicketAvailability,
	); err != nil {
		return nil, err
	}

	if s.resetOnEdit && event.ModerationStatus == entity.ModerationStatusApproved {
		event.ModerationStatus = entity.ModerationStatusPending
		event.IsPublished = false
		logrus.WithField("event_id", event.ID).Info("Approved event edited, sent back to moderation")
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidate(ctx, event.ID)
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID int64) (*entity.Event, error) {
	if s.cache != nil {
		if event, err := s.cache.GetEvent(ctx, eventID); err == nil {
			return event, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEvent(ctx, event); err != nil {
			logrus.WithError(err).Warn("Failed to cache event")
		}
	}
	return event, nil
}

func (s *eventService) ListPublished(ctx context.Context, filter *entity.EventFilter) ([]*entity.Event, error) {
	events, err := s.eventRepo.ListPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) QueryEvents(ctx context.Context, filter *entity.EventFilter, page, pageSize int) (*EventPage, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	events, total, err := s.eventRepo.QueryPublished(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	// Out-of-range pages clamp to the last available page instead of erroring.
	if page > totalPages {
		page = totalPages
		events, total, err = s.eventRepo.QueryPublished(ctx, filter, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}
	}

	pageResponse := &EventPage{
		Events:      make([]*EventResponse, 0, len(events)),
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
	for _, event := range events {
		pageResponse.Events = append(pageResponse.Events, SerializeEvent(event))
	}
	return pageResponse, nil
}

func (s *eventService) MyEvents(ctx context.Context, actor *entity.User) ([]*entity.Event, error) {
	if actor == nil {
		return nil, entity.ErrUnauthenticated
	}
	if !actor.IsOrganizer() {
		return nil, entity.ErrPermissionDenied
	}

	events, err := s.eventRepo.ListByOrganizer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer events: %w", err)
	}
	return events, nil
}

func (s *eventService) invalidate(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate event cache")
	}
}

// SerializeEvent converts an event to its JSON API form.
func SerializeEvent(event *entity.Event) *EventResponse {
	resp := &EventResponse{
		ID:                 event.ID,
		Title:              event.Title,
		Description:        event.Description,
		Date:               event.Date.Format(dateLayout),
		Time:               event.StartTime,
		Venue:              event.Venue,
		TicketPrice:        event.TicketPrice.StringFixed(2),
		TicketAvailability: event.TicketAvailability,
		IsPublished:        event.IsPublished,
		CreatedAt:          event.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          event.UpdatedAt.Format(time.RFC3339),
	}
	if event.Organizer != nil {
		resp.Organizer = &OrganizerResponse{
			ID:          event.Organizer.ID,
			Username:    event.Organizer.Username,
			DisplayName: event.Organizer.DisplayName,
		}
	}
	return resp
}
