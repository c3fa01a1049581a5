package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-ticketer/internal/entity"
	"event-ticketer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEventService records the filters handlers pass down.
type stubEventService struct {
	listFilter  *entity.EventFilter
	queryFilter *entity.EventFilter
	queried     bool
}

func (s *stubEventService) CreateEvent(_ context.Context, _ *entity.User, _ *service.CreateEventRequest) (*entity.Event, error) {
	return nil, entity.ErrPermissionDenied
}

func (s *stubEventService) UpdateEvent(_ context.Context, _ *entity.User, _ int64, _ *service.UpdateEventRequest) (*entity.Event, error) {
	return nil, entity.ErrPermissionDenied
}

func (s *stubEventService) GetEvent(_ context.Context, _ int64) (*entity.Event, error) {
	return nil, entity.ErrEventNotFound
}

func (s *stubEventService) ListPublished(_ context.Context, filter *entity.EventFilter) ([]*entity.Event, error) {
	s.listFilter = filter
	return nil, nil
}

func (s *stubEventService) QueryEvents(_ context.Context, filter *entity.EventFilter, page, pageSize int) (*service.EventPage, error) {
	s.queryFilter = filter
	s.queried = true
	return &service.EventPage{Page: page, PageSize: pageSize, TotalPages: 1}, nil
}

func (s *stubEventService) MyEvents(_ context.Context, _ *entity.User) ([]*entity.Event, error) {
	return nil, entity.ErrPermissionDenied
}

func newEventRouter(svc service.EventService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewEventHandler(svc)
	router := gin.New()
	router.GET("/events", handler.ListEvents)
	router.GET("/events/search", handler.SearchEvents)
	return router
}

func doGet(router *gin.Engine, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

// The public listing drops an unparseable price bound instead of failing
// the request.
func TestListEventsLenientPriceParsing(t *testing.T) {
	svc := &stubEventService{}
	router := newEventRouter(svc)

	recorder := doGet(router, "/events?name=jazz&price_min=abc&price_max=30.00")

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, svc.listFilter)
	assert.Equal(t, "jazz", svc.listFilter.Name)
	assert.Nil(t, svc.listFilter.PriceMin)
	require.NotNil(t, svc.listFilter.PriceMax)
	assert.Equal(t, "30.00", svc.listFilter.PriceMax.StringFixed(2))
}

// The JSON search rejects the same malformed bounds with a 400 before any
// query runs.
func TestSearchEventsStrictPriceParsing(t *testing.T) {
	for _, target := range []string{
		"/events/search?price_min=abc",
		"/events/search?price_max=abc",
	} {
		svc := &stubEventService{}
		router := newEventRouter(svc)

		recorder := doGet(router, target)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, target)
		assert.Contains(t, recorder.Body.String(), `"error"`)
		assert.Contains(t, recorder.Body.String(), "abc")
		assert.False(t, svc.queried)
	}
}

func TestSearchEventsPassesValidFilters(t *testing.T) {
	svc := &stubEventService{}
	router := newEventRouter(svc)

	recorder := doGet(router, "/events/search?name=jazz&location=hall&price_min=10&price_max=30.00&page=2&page_size=5")

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, svc.queried)
	assert.Equal(t, "jazz", svc.queryFilter.Name)
	assert.Equal(t, "hall", svc.queryFilter.Location)
	require.NotNil(t, svc.queryFilter.PriceMin)
	assert.Equal(t, "10.00", svc.queryFilter.PriceMin.StringFixed(2))
	require.NotNil(t, svc.queryFilter.PriceMax)
	assert.Equal(t, "30.00", svc.queryFilter.PriceMax.StringFixed(2))
	assert.Contains(t, recorder.Body.String(), `"page":2`)
	assert.Contains(t, recorder.Body.String(), `"page_size":5`)
}
