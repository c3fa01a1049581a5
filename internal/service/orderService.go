package service

import (
	"context"
	"errors"
	"fmt"

	repository "event-ticketer/internal/database/postgres"
	rediscache "event-ticketer/internal/database/redis"
	"event-ticketer/internal/entity"
	"event-ticketer/monitoring"

	"github.com/sirupsen/logrus"
)

type orderService struct {
	orderRepo repository.OrderRepository
	cache     *rediscache.EventCache
}

func NewOrderService(orderRepo repository.OrderRepository, cache *rediscache.EventCache) OrderService {
	return &orderService{orderRepo: orderRepo, cache: cache}
}

// PurchaseTicket validates the request and delegates the atomic
// order-plus-decrement to the repository. Failures are user-correctable input
// errors and are never retried.
func (s *orderService) PurchaseTicket(ctx context.Context, actor *entity.User, eventID int64, quantity int) (*entity.Order, error) {
	if actor == nil {
		return nil, entity.ErrUnauthenticated
	}
	if !actor.IsAttendee() {
		monitoring.PurchaseRejections.WithLabelValues("permission_denied").Inc()
		return nil, entity.ErrPermissionDenied
	}
	if quantity < 1 {
		monitoring.PurchaseRejections.WithLabelValues("invalid_quantity").Inc()
		return nil, entity.NewValidationError("quantity must be at least 1")
	}

	order, err := s.orderRepo.CreatePurchase(ctx, actor.ID, eventID, quantity)
	if err != nil {
		var insufficient *entity.InsufficientAvailabilityError
		switch {
		case errors.Is(err, entity.ErrSoldOut):
			monitoring.PurchaseRejections.WithLabelValues("sold_out").Inc()
		case errors.As(err, &insufficient):
			monitoring.PurchaseRejections.WithLabelValues("insufficient_availability").Inc()
		}
		return nil, err
	}

	monitoring.OrdersCreated.WithLabelValues("direct").Inc()
	monitoring.TicketsSold.Add(float64(order.Quantity))

	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate event cache")
		}
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"event_id": order.EventID,
		"attendee": order.AttendeeID,
		"quantity": order.Quantity,
	}).Info("Ticket purchase completed")

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor *entity.User, orderID int64) (*entity.Order, error) {
	if actor == nil {
		return nil, entity.ErrUnauthenticated
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.AttendeeID != actor.ID && !actor.IsAdministrator() {
		return nil, entity.ErrPermissionDenied
	}
	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, actor *entity.User) ([]*entity.Order, error) {
	if actor == nil {
		return nil, entity.ErrUnauthenticated
	}

	orders, err := s.orderRepo.ListByAttendee(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
