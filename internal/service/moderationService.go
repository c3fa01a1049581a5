package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "event-ticketer/internal/database/postgres"
	rediscache "event-ticketer/internal/database/redis"
	"event-ticketer/internal/entity"
	"event-ticketer/monitoring"

	"github.com/sirupsen/logrus"
)

type moderationService struct {
	eventRepo repository.EventRepository
	cache     *rediscache.EventCache
}

func NewModerationService(eventRepo repository.EventRepository, cache *rediscache.EventCache) ModerationService {
	return &moderationService{eventRepo: eventRepo, cache: cache}
}

func (s *moderationService) requireAdmin(actor *entity.User) error {
	if actor == nil {
		return entity.ErrUnauthenticated
	}
	if !actor.IsAdministrator() {
		return entity.ErrPermissionDenied
	}
	return nil
}

// Approve moves an event to approved and publishes it, from any prior
// status. Notes may be empty.
func (s *moderationService) Approve(ctx context.Context, actor *entity.User, eventID int64, notes string) (*entity.Event, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event.ModerationStatus = entity.ModerationStatusApproved
	event.IsPublished = true
	event.ModerationNotes = notes
	event.ModeratedBy = &actor.ID
	event.ModeratedAt = &now

	if err := s.eventRepo.SetModeration(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to approve event: %w", err)
	}

	monitoring.ModerationDecisions.WithLabelValues("approve").Inc()
	s.invalidate(ctx, eventID)

	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"admin":    actor.ID,
	}).Info("Event approved and published")

	return event, nil
}

// Reject moves an event to rejected and unpublishes it. The rejection must
// explain itself: empty notes fail validation and leave the event unchanged.
func (s *moderationService) Reject(ctx context.Context, actor *entity.User, eventID int64, notes string) (*entity.Event, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	if strings.TrimSpace(notes) == "" {
		return nil, entity.NewValidationError("rejection notes are required")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event.ModerationStatus = entity.ModerationStatusRejected
	event.IsPublished = false
	event.ModerationNotes = notes
	event.ModeratedBy = &actor.ID
	event.ModeratedAt = &now

	if err := s.eventRepo.SetModeration(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to reject event: %w", err)
	}

	monitoring.ModerationDecisions.WithLabelValues("reject").Inc()
	s.invalidate(ctx, eventID)

	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"admin":    actor.ID,
	}).Info("Event rejected and unpublished")

	return event, nil
}

func (s *moderationService) Queue(ctx context.Context, actor *entity.User, status entity.ModerationStatus) ([]*entity.Event, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	if status == "" {
		status = entity.ModerationStatusPending
	}
	switch status {
	case entity.ModerationStatusPending, entity.ModerationStatusApproved, entity.ModerationStatusRejected:
	default:
		return nil, entity.NewValidationError("unknown moderation status %q", status)
	}

	events, err := s.eventRepo.ListByModerationStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation queue: %w", err)
	}
	return events, nil
}

func (s *moderationService) invalidate(ctx context.Context, eventID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate event cache")
	}
}
