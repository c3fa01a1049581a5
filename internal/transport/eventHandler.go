package transport

import (
	"net/http"
	"strconv"

	"event-ticketer/internal/entity"
	"event-ticketer/internal/service"
	"event-ticketer/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.SerializeEvent(event))
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.SerializeEvent(event))
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.SerializeEvent(event))
}

// ListEvents is the lenient public listing: an unparseable price bound is
// treated as no filter at all, contrast with the strict search endpoint.
func (h *EventHandler) ListEvents(c *gin.Context) {
	filter := &entity.EventFilter{
		Name:     c.Query("name"),
		Location: c.Query("location"),
	}
	if raw := c.Query("price_min"); raw != "" {
		if min, err := decimal.NewFromString(raw); err == nil {
			filter.PriceMin = &min
		}
	}
	if raw := c.Query("price_max"); raw != "" {
		if max, err := decimal.NewFromString(raw); err == nil {
			filter.PriceMax = &max
		}
	}

	events, err := h.eventService.ListPublished(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]*service.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, service.SerializeEvent(event))
	}
	c.JSON(http.StatusOK, gin.H{"events": responses})
}

// SearchEvents is the strict paginated JSON query: malformed price bounds
// are rejected with a 400 rather than ignored.
func (h *EventHandler) SearchEvents(c *gin.Context) {
	filter := &entity.EventFilter{
		Name:     c.Query("name"),
		Location: c.Query("location"),
	}
	if raw := c.Query("price_min"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_min: " + raw})
			return
		}
		filter.PriceMin = &min
	}
	if raw := c.Query("price_max"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_max: " + raw})
			return
		}
		filter.PriceMax = &max
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}
	pageSize := service.DefaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			pageSize = parsed
		}
	}

	result, err := h.eventService.QueryEvents(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *EventHandler) MyEvents(c *gin.Context) {
	events, err := h.eventService.MyEvents(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
