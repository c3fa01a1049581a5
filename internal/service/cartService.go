package service

import (
	"context"

	repository "event-ticketer/internal/database/postgres"
	rediscache "event-ticketer/internal/database/redis"
	"event-ticketer/internal/entity"
	"event-ticketer/monitoring"

	"github.com/sirupsen/logrus"
)

type cartService struct {
	cartRepo repository.CartRepository
	cache    *rediscache.EventCache
}

func NewCartService(cartRepo repository.CartRepository, cache *rediscache.EventCache) CartService {
	return &cartService{cartRepo: cartRepo, cache: cache}
}

func (s *cartService) requireAttendee(actor *entity.User) error {
	if actor == nil {
		return entity.ErrUnauthenticated
	}
	if !actor.IsAttendee() {
		return entity.ErrPermissionDenied
	}
	return nil
}

func (s *cartService) GetCart(ctx context.Context, actor *entity.User) (*entity.Cart, error) {
	if err := s.requireAttendee(actor); err != nil {
		return nil, err
	}
	return s.cartRepo.GetOrCreateByUser(ctx, actor.ID)
}

// AddToCart checks the combined quantity (existing cart row plus the new
// request) against live availability. Nothing is reserved: availability only
// moves at purchase time.
func (s *cartService) AddToCart(ctx context.Context, actor *entity.User, eventID int64, quantity int) (*entity.CartItem, error) {
	if err := s.requireAttendee(actor); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, entity.NewValidationError("quantity must be at least 1")
	}

	cart, err := s.cartRepo.GetOrCreateByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.AddItem(ctx, cart.ID, eventID, quantity)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  actor.ID,
		"event_id": eventID,
		"quantity": item.Quantity,
	}).Info("Cart item added")

	return item, nil
}

// ownedItem loads the item and verifies it belongs to the actor's cart.
func (s *cartService) ownedItem(ctx context.Context, actor *entity.User, itemID int64) (*entity.CartItem, error) {
	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, entity.ErrPermissionDenied
	}
	return item, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, actor *entity.User, itemID int64, quantity int) error {
	if err := s.requireAttendee(actor); err != nil {
		return err
	}
	if quantity < 1 {
		return entity.NewValidationError("quantity must be at least 1")
	}

	if _, err := s.ownedItem(ctx, actor, itemID); err != nil {
		return err
	}
	return s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity)
}

func (s *cartService) RemoveItem(ctx context.Context, actor *entity.User, itemID int64) (string, error) {
	if err := s.requireAttendee(actor); err != nil {
		return "", err
	}

	item, err := s.ownedItem(ctx, actor, itemID)
	if err != nil {
		return "", err
	}

	if err := s.cartRepo.RemoveItem(ctx, itemID); err != nil {
		return "", err
	}
	return item.EventTitle, nil
}

// Checkout converts every cart item into a paid order in one transaction.
// Any availability violation rolls the whole conversion back, leaving both
// the cart and all availabilities untouched.
func (s *cartService) Checkout(ctx context.Context, actor *entity.User) ([]*entity.Order, error) {
	if err := s.requireAttendee(actor); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	orders, err := s.cartRepo.Checkout(ctx, cart.ID, actor.ID)
	if err != nil {
		return nil, err
	}

	tickets := 0
	for _, order := range orders {
		tickets += order.Quantity
		monitoring.OrdersCreated.WithLabelValues("checkout").Inc()
		if s.cache != nil {
			if cerr := s.cache.InvalidateEvent(ctx, order.EventID); cerr != nil {
				logrus.WithError(cerr).Warn("Failed to invalidate event cache")
			}
		}
	}
	monitoring.TicketsSold.Add(float64(tickets))

	logrus.WithFields(logrus.Fields{
		"user_id": actor.ID,
		"orders":  len(orders),
		"tickets": tickets,
	}).Info("Cart checkout completed")

	return orders, nil
}
