package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"event-ticketer/internal/entity"

	"github.com/shopspring/decimal"
)

// fakeStore is a mutex-guarded in-memory stand-in for the persistence store.
// The lock spans every check-then-act sequence, matching the transactional
// contract the postgres repositories provide with row locking.
type fakeStore struct {
	mu sync.Mutex

	users      map[int64]*entity.User
	events     map[int64]*entity.Event
	orders     map[int64]*entity.Order
	carts      map[int64]*entity.Cart
	cartByUser map[int64]int64
	items      map[int64]*entity.CartItem
	rooms      map[int64]*entity.ChatRoom // keyed by event id
	messages   map[int64][]*entity.Message

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[int64]*entity.User),
		events:     make(map[int64]*entity.Event),
		orders:     make(map[int64]*entity.Order),
		carts:      make(map[int64]*entity.Cart),
		cartByUser: make(map[int64]int64),
		items:      make(map[int64]*entity.CartItem),
		rooms:      make(map[int64]*entity.ChatRoom),
		messages:   make(map[int64][]*entity.Message),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func copyEvent(e *entity.Event) *entity.Event {
	clone := *e
	return &clone
}

// --- seeding helpers ---

func (s *fakeStore) addUser(role entity.Role, username string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &entity.User{
		ID:          s.id(),
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
		Role:        role,
		CreatedAt:   time.Now(),
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeStore) addEvent(organizer *entity.User, title, venue, price string, availability int, published bool) *entity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticketPrice, _ := decimal.NewFromString(price)
	status := entity.ModerationStatusPending
	if published {
		status = entity.ModerationStatusApproved
	}
	event := &entity.Event{
		ID:                 s.id(),
		Title:              title,
		Description:        "about " + title,
		Date:               time.Now().AddDate(0, 1, 0),
		StartTime:          "19:00:00",
		Venue:              venue,
		TicketPrice:        ticketPrice,
		TicketAvailability: availability,
		OrganizerID:        organizer.ID,
		IsPublished:        published,
		ModerationStatus:   status,
		CreatedAt:          time.Now().Add(time.Duration(s.nextID) * time.Second),
		UpdatedAt:          time.Now(),
		Organizer:          organizer,
	}
	s.events[event.ID] = event
	return event
}

// --- EventRepository ---

type fakeEventRepo struct{ store *fakeStore }

func (r *fakeEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event.ID = r.store.id()
	event.IsPublished = false
	event.ModerationStatus = entity.ModerationStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.store.events[event.ID] = copyEvent(event)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	event, ok := r.store.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *entity.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[event.ID]; !ok {
		return entity.ErrEventNotFound
	}
	event.UpdatedAt = time.Now()
	r.store.events[event.ID] = copyEvent(event)
	return nil
}

func matchesFilter(event *entity.Event, filter *entity.EventFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Name != "" && !strings.Contains(strings.ToLower(event.Title), strings.ToLower(filter.Name)) {
		return false
	}
	if filter.Location != "" && !strings.Contains(strings.ToLower(event.Venue), strings.ToLower(filter.Location)) {
		return false
	}
	if filter.PriceMin != nil && event.TicketPrice.LessThan(*filter.PriceMin) {
		return false
	}
	if filter.PriceMax != nil && event.TicketPrice.GreaterThan(*filter.PriceMax) {
		return false
	}
	return true
}

func (r *fakeEventRepo) publishedSorted(filter *entity.EventFilter) []*entity.Event {
	var events []*entity.Event
	for _, event := range r.store.events {
		if event.IsPublished && matchesFilter(event, filter) {
			events = append(events, copyEvent(event))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events
}

func (r *fakeEventRepo) ListPublished(_ context.Context, filter *entity.EventFilter) ([]*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.publishedSorted(filter), nil
}

func (r *fakeEventRepo) QueryPublished(_ context.Context, filter *entity.EventFilter, limit, offset int) ([]*entity.Event, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := r.publishedSorted(filter)
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeEventRepo) ListByOrganizer(_ context.Context, organizerID int64) ([]*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var events []*entity.Event
	for _, event := range r.store.events {
		if event.OrganizerID == organizerID {
			events = append(events, copyEvent(event))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (r *fakeEventRepo) ListByModerationStatus(_ context.Context, status entity.ModerationStatus) ([]*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var events []*entity.Event
	for _, event := range r.store.events {
		if event.ModerationStatus == status {
			events = append(events, copyEvent(event))
		}
	}
	return events, nil
}

func (r *fakeEventRepo) SetModeration(_ context.Context, event *entity.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[event.ID]; !ok {
		return entity.ErrEventNotFound
	}
	event.UpdatedAt = time.Now()
	r.store.events[event.ID] = copyEvent(event)
	return nil
}

// --- OrderRepository ---

type fakeOrderRepo struct{ store *fakeStore }

// purchaseLocked is the fake's equivalent of the lock-check-insert-decrement
// transaction. Caller must hold the store lock.
func (s *fakeStore) purchaseLocked(attendeeID, eventID int64, quantity int) (*entity.Order, error) {
	event, ok := s.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	if event.TicketAvailability == 0 {
		return nil, entity.ErrSoldOut
	}
	if quantity > event.TicketAvailability {
		return nil, &entity.InsufficientAvailabilityError{
			EventTitle: event.Title,
			Requested:  quantity,
			Remaining:  event.TicketAvailability,
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:         s.id(),
		AttendeeID: attendeeID,
		EventID:    eventID,
		Quantity:   quantity,
		UnitPrice:  event.TicketPrice,
		Status:     entity.OrderStatusPaid,
		CreatedAt:  now,
		UpdatedAt:  now,
		EventTitle: event.Title,
	}
	s.orders[order.ID] = order
	event.TicketAvailability -= quantity
	return order, nil
}

func (r *fakeOrderRepo) CreatePurchase(_ context.Context, attendeeID, eventID int64, quantity int) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.purchaseLocked(attendeeID, eventID, quantity)
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) ListByAttendee(_ context.Context, attendeeID int64) ([]*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var orders []*entity.Order
	for _, order := range r.store.orders {
		if order.AttendeeID == attendeeID {
			clone := *order
			orders = append(orders, &clone)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (r *fakeOrderRepo) HasPaidOrder(_ context.Context, userID, eventID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, order := range r.store.orders {
		if order.AttendeeID == userID && order.EventID == eventID && order.Status == entity.OrderStatusPaid {
			return true, nil
		}
	}
	return false, nil
}

// addOrder seeds an order directly, bypassing availability accounting.
func (s *fakeStore) addOrder(attendeeID, eventID int64, quantity int, status entity.OrderStatus) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := &entity.Order{
		ID:         s.id(),
		AttendeeID: attendeeID,
		EventID:    eventID,
		Quantity:   quantity,
		UnitPrice:  decimal.NewFromInt(10),
		Status:     status,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.orders[order.ID] = order
	return order
}

// --- CartRepository ---

type fakeCartRepo struct{ store *fakeStore }

func (r *fakeCartRepo) GetOrCreateByUser(_ context.Context, userID int64) (*entity.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cartID, ok := r.store.cartByUser[userID]
	if !ok {
		cartID = r.store.id()
		r.store.carts[cartID] = &entity.Cart{
			ID:        cartID,
			UserID:    userID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		r.store.cartByUser[userID] = cartID
	}
	cart := *r.store.carts[cartID]
	cart.Items = r.itemsForCartLocked(cartID)
	return &cart, nil
}

func (r *fakeCartRepo) itemsForCartLocked(cartID int64) []*entity.CartItem {
	var items []*entity.CartItem
	for _, item := range r.store.items {
		if item.CartID == cartID {
			clone := *item
			items = append(items, &clone)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (r *fakeCartRepo) AddItem(_ context.Context, cartID, eventID int64, quantity int) (*entity.CartItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event, ok := r.store.events[eventID]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	if event.TicketAvailability == 0 {
		return nil, entity.ErrSoldOut
	}

	var existing *entity.CartItem
	for _, item := range r.store.items {
		if item.CartID == cartID && item.EventID == eventID {
			existing = item
			break
		}
	}

	current := 0
	if existing != nil {
		current = existing.Quantity
	}
	if current+quantity > event.TicketAvailability {
		return nil, &entity.InsufficientAvailabilityError{
			EventTitle: event.Title,
			Requested:  current + quantity,
			Remaining:  event.TicketAvailability,
		}
	}

	if existing != nil {
		existing.Quantity += quantity
		clone := *existing
		return &clone, nil
	}

	item := &entity.CartItem{
		ID:         r.store.id(),
		CartID:     cartID,
		EventID:    eventID,
		Quantity:   quantity,
		AddedAt:    time.Now(),
		EventTitle: event.Title,
		EventPrice: event.TicketPrice,
	}
	r.store.items[item.ID] = item
	clone := *item
	return &clone, nil
}

func (r *fakeCartRepo) GetItem(_ context.Context, itemID int64) (*entity.CartItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[itemID]
	if !ok {
		return nil, entity.ErrCartItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[itemID]
	if !ok {
		return entity.ErrCartItemNotFound
	}
	event := r.store.events[item.EventID]
	if quantity > event.TicketAvailability {
		return &entity.InsufficientAvailabilityError{
			EventTitle: event.Title,
			Requested:  quantity,
			Remaining:  event.TicketAvailability,
		}
	}
	item.Quantity = quantity
	return nil
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, itemID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.items[itemID]; !ok {
		return entity.ErrCartItemNotFound
	}
	delete(r.store.items, itemID)
	return nil
}

func (r *fakeCartRepo) Checkout(_ context.Context, cartID, attendeeID int64) ([]*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items := r.itemsForCartLocked(cartID)
	if len(items) == 0 {
		return nil, entity.ErrCartEmpty
	}

	// Events are processed in id order, matching the lock order the SQL
	// checkout uses to stay deadlock free.
	sort.Slice(items, func(i, j int) bool { return items[i].EventID < items[j].EventID })

	// Validate everything before mutating anything, mirroring the rollback
	// semantics of the SQL transaction.
	for _, item := range items {
		event, ok := r.store.events[item.EventID]
		if !ok {
			return nil, entity.ErrEventNotFound
		}
		if event.TicketAvailability == 0 {
			return nil, entity.ErrSoldOut
		}
		if item.Quantity > event.TicketAvailability {
			return nil, &entity.InsufficientAvailabilityError{
				EventTitle: event.Title,
				Requested:  item.Quantity,
				Remaining:  event.TicketAvailability,
			}
		}
	}

	var orders []*entity.Order
	for _, item := range items {
		order, err := r.store.purchaseLocked(attendeeID, item.EventID, item.Quantity)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		delete(r.store.items, item.ID)
	}
	return orders, nil
}

// --- ChatRepository ---

type fakeChatRepo struct{ store *fakeStore }

func (r *fakeChatRepo) GetOrCreateRoom(_ context.Context, eventID int64) (*entity.ChatRoom, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	room, ok := r.store.rooms[eventID]
	if !ok {
		room = &entity.ChatRoom{
			ID:        r.store.id(),
			EventID:   eventID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		r.store.rooms[eventID] = room
	}
	clone := *room
	return &clone, nil
}

func (r *fakeChatRepo) CreateMessage(_ context.Context, roomID, senderID int64, content string) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	message := &entity.Message{
		ID:        r.store.id(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if sender, ok := r.store.users[senderID]; ok {
		message.SenderName = sender.Username
	}
	r.store.messages[roomID] = append(r.store.messages[roomID], message)
	return message, nil
}

func (r *fakeChatRepo) ListMessages(_ context.Context, roomID int64) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	feed := r.store.messages[roomID]
	out := make([]*entity.Message, len(feed))
	copy(out, feed)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeChatRepo) ListParticipants(_ context.Context, eventID int64) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seen := make(map[int64]bool)
	var users []*entity.User
	for _, order := range r.store.orders {
		if order.EventID == eventID && order.Status == entity.OrderStatusPaid && !seen[order.AttendeeID] {
			seen[order.AttendeeID] = true
			if user, ok := r.store.users[order.AttendeeID]; ok {
				users = append(users, user)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
