package service

import (
	"context"
	"fmt"
	"strings"

	repository "event-ticketer/internal/database/postgres"
	"event-ticketer/internal/entity"
	"event-ticketer/monitoring"

	"github.com/sirupsen/logrus"
)

type chatService struct {
	chatRepo         repository.ChatRepository
	orderRepo        repository.OrderRepository
	eventRepo        repository.EventRepository
	maxMessageLength int
	organizerAccess  bool
}

// NewChatService creates the chat engine. Eligibility is always derived from
// paid orders, never stored. organizerAccess optionally opens an event's chat
// to its own organizer; the default marketplace policy keeps it closed.
func NewChatService(
	chatRepo repository.ChatRepository,
	orderRepo repository.OrderRepository,
	eventRepo repository.EventRepository,
	maxMessageLength int,
	organizerAccess bool,
) ChatService {
	if maxMessageLength <= 0 {
		maxMessageLength = 1000
	}
	return &chatService{
		chatRepo:         chatRepo,
		orderRepo:        orderRepo,
		eventRepo:        eventRepo,
		maxMessageLength: maxMessageLength,
		organizerAccess:  organizerAccess,
	}
}

// CanAccess gates the chat room on a paid order for the event. Organizers
// and administrators are not granted access through this check.
func (s *chatService) CanAccess(ctx context.Context, user *entity.User, eventID int64) (bool, error) {
	if user == nil {
		return false, nil
	}

	if s.organizerAccess && user.IsOrganizer() {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return false, err
		}
		return event.OrganizerID == user.ID, nil
	}

	if !user.IsAttendee() {
		return false, nil
	}
	return s.orderRepo.HasPaidOrder(ctx, user.ID, eventID)
}

func (s *chatService) GetParticipants(ctx context.Context, actor *entity.User, eventID int64) ([]*entity.User, error) {
	ok, err := s.CanAccess(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.ErrForbidden
	}

	users, err := s.chatRepo.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return users, nil
}

func (s *chatService) SendMessage(ctx context.Context, actor *entity.User, eventID int64, content string) (*entity.Message, error) {
	ok, err := s.CanAccess(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.ErrForbidden
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, entity.NewValidationError("message cannot be empty")
	}
	if len([]rune(trimmed)) > s.maxMessageLength {
		return nil, entity.NewValidationError("message exceeds %d characters", s.maxMessageLength)
	}

	room, err := s.chatRepo.GetOrCreateRoom(ctx, eventID)
	if err != nil {
		return nil, err
	}

	message, err := s.chatRepo.CreateMessage(ctx, room.ID, actor.ID, trimmed)
	if err != nil {
		return nil, err
	}
	message.SenderName = actor.Username

	monitoring.MessagesSent.Inc()
	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"room_id":  room.ID,
		"sender":   actor.ID,
	}).Info("Chat message sent")

	return message, nil
}

func (s *chatService) ListMessages(ctx context.Context, actor *entity.User, eventID int64) ([]*entity.Message, error) {
	ok, err := s.CanAccess(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.ErrForbidden
	}

	room, err := s.chatRepo.GetOrCreateRoom(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, room.ID)
}
