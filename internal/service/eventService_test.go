package service

import (
	"context"
	"testing"

	"event-ticketer/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventFixture(t *testing.T, resetOnEdit bool) (*fakeStore, EventService) {
	t.Helper()
	store := newFakeStore()
	return store, NewEventService(&fakeEventRepo{store: store}, nil, resetOnEdit)
}

func validCreateRequest() *CreateEventRequest {
	return &CreateEventRequest{
		Title:              "Jazz Night",
		Description:        "An evening of jazz",
		Date:               "2026-10-01",
		Time:               "19:30:00",
		Venue:              "Blue Hall",
		TicketPrice:        "25.50",
		TicketAvailability: 100,
	}
}

func TestCreateEventStartsPendingAndUnpublished(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")

	event, err := events.CreateEvent(context.Background(), organizer, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.ModerationStatusPending, event.ModerationStatus)
	assert.False(t, event.IsPublished)
	assert.False(t, event.IsApproved())
	assert.Equal(t, organizer.ID, event.OrganizerID)
	assert.Equal(t, "25.50", event.TicketPrice.StringFixed(2))
	assert.Equal(t, 100, event.TicketAvailability)
}

func TestCreateEventRequiresOrganizer(t *testing.T) {
	store, events := newEventFixture(t, false)
	attendee := store.addUser(entity.RoleAttendee, "alice")
	admin := store.addUser(entity.RoleAdministrator, "ada")

	_, err := events.CreateEvent(context.Background(), nil, validCreateRequest())
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	_, err = events.CreateEvent(context.Background(), attendee, validCreateRequest())
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)

	_, err = events.CreateEvent(context.Background(), admin, validCreateRequest())
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)
}

func TestCreateEventValidation(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")

	cases := []struct {
		name   string
		mutate func(*CreateEventRequest)
	}{
		{"bad date", func(r *CreateEventRequest) { r.Date = "01-10-2026" }},
		{"bad time", func(r *CreateEventRequest) { r.Time = "7pm" }},
		{"bad price", func(r *CreateEventRequest) { r.TicketPrice = "twenty" }},
		{"negative price", func(r *CreateEventRequest) { r.TicketPrice = "-5.00" }},
		{"negative availability", func(r *CreateEventRequest) { r.TicketAvailability = -1 }},
		{"bad latitude", func(r *CreateEventRequest) { lat := "north"; r.Latitude = &lat }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(req)
			_, err := events.CreateEvent(context.Background(), organizer, req)
			var validation *entity.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}

	assert.Empty(t, store.events)
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	other := store.addUser(entity.RoleOrganizer, "oscar")
	event := store.addEvent(organizer, "Jazz Night", "Blue Hall", "25.50", 100, true)

	req := &UpdateEventRequest{
		Title:              "Jazz Night Deluxe",
		Date:               "2026-10-02",
		Time:               "20:00:00",
		Venue:              "Blue Hall",
		TicketPrice:        "30.00",
		TicketAvailability: 80,
	}

	_, err := events.UpdateEvent(context.Background(), other, event.ID, req)
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)

	updated, err := events.UpdateEvent(context.Background(), organizer, event.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night Deluxe", updated.Title)
	assert.Equal(t, "30.00", updated.TicketPrice.StringFixed(2))

	// Without reset-on-edit the approved status survives the edit.
	assert.Equal(t, entity.ModerationStatusApproved, updated.ModerationStatus)
	assert.True(t, updated.IsPublished)
}

func TestUpdateEventResetOnEdit(t *testing.T) {
	store, events := newEventFixture(t, true)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	event := store.addEvent(organizer, "Jazz Night", "Blue Hall", "25.50", 100, true)

	req := &UpdateEventRequest{
		Title:              "Jazz Night",
		Date:               "2026-10-02",
		Time:               "20:00:00",
		Venue:              "Blue Hall",
		TicketPrice:        "25.50",
		TicketAvailability: 100,
	}

	updated, err := events.UpdateEvent(context.Background(), organizer, event.ID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.ModerationStatusPending, updated.ModerationStatus)
	assert.False(t, updated.IsPublished)
}

func TestListPublishedHidesUnpublished(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	store.addEvent(organizer, "Hidden Draft", "Hall", "10.00", 5, false)
	live := store.addEvent(organizer, "Live Show", "Hall", "10.00", 5, true)

	listed, err := events.ListPublished(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, live.ID, listed[0].ID)
}

func TestListPublishedFiltersCompose(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	store.addEvent(organizer, "Jazz Night", "Blue Hall", "25.50", 5, true)
	store.addEvent(organizer, "Jazz Brunch", "Riverside Cafe", "15.00", 5, true)
	store.addEvent(organizer, "Rock Fest", "Blue Hall", "40.00", 5, true)

	priceMax := decimal.NewFromInt(30)

	// Name alone matches both jazz events, case-insensitively.
	listed, err := events.ListPublished(context.Background(), &entity.EventFilter{Name: "jazz"})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// Name and venue together narrow to one.
	listed, err = events.ListPublished(context.Background(), &entity.EventFilter{
		Name:     "jazz",
		Location: "blue",
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Jazz Night", listed[0].Title)

	// Price bound is inclusive and composes with the rest.
	listed, err = events.ListPublished(context.Background(), &entity.EventFilter{
		Location: "blue",
		PriceMax: &priceMax,
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Jazz Night", listed[0].Title)

	// Inclusive boundary: max equal to the price still matches.
	exact := decimal.RequireFromString("25.50")
	listed, err = events.ListPublished(context.Background(), &entity.EventFilter{
		Name:     "jazz night",
		PriceMax: &exact,
	})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// No matches is an empty result, not an error.
	listed, err = events.ListPublished(context.Background(), &entity.EventFilter{Name: "opera"})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestQueryEventsPagination(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	store.addEvent(organizer, "First", "Hall", "10.00", 5, true)
	store.addEvent(organizer, "Second", "Hall", "10.00", 5, true)
	store.addEvent(organizer, "Third", "Hall", "10.00", 5, true)

	page, err := events.QueryEvents(context.Background(), nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Events, 2)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)

	page, err = events.QueryEvents(context.Background(), nil, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Events, 1)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)

	// Newest first: page one starts with the most recently created event.
	first, err := events.QueryEvents(context.Background(), nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Third", first.Events[0].Title)
}

func TestQueryEventsClampsOutOfRangePage(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	store.addEvent(organizer, "Only One", "Hall", "10.00", 5, true)

	page, err := events.QueryEvents(context.Background(), nil, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Events, 1)

	// Zero and negative inputs fall back to sane defaults.
	page, err = events.QueryEvents(context.Background(), nil, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
}

func TestQueryEventsEmptyResult(t *testing.T) {
	_, events := newEventFixture(t, false)

	page, err := events.QueryEvents(context.Background(), nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Events)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestMyEventsIncludesAllStatuses(t *testing.T) {
	store, events := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	other := store.addUser(entity.RoleOrganizer, "oscar")
	attendee := store.addUser(entity.RoleAttendee, "alice")
	store.addEvent(organizer, "Draft", "Hall", "10.00", 5, false)
	store.addEvent(organizer, "Live", "Hall", "10.00", 5, true)
	store.addEvent(other, "Elsewhere", "Hall", "10.00", 5, true)

	mine, err := events.MyEvents(context.Background(), organizer)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = events.MyEvents(context.Background(), attendee)
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)
}

func TestSerializeEvent(t *testing.T) {
	store, _ := newEventFixture(t, false)
	organizer := store.addUser(entity.RoleOrganizer, "olga")
	event := store.addEvent(organizer, "Jazz Night", "Blue Hall", "25.5", 10, true)

	resp := SerializeEvent(event)
	assert.Equal(t, "25.50", resp.TicketPrice)
	assert.Equal(t, "19:00:00", resp.Time)
	require.NotNil(t, resp.Organizer)
	assert.Equal(t, "olga", resp.Organizer.Username)
}
