package transport

import (
	"net/http"
	"strconv"

	"event-ticketer/internal/entity"
	"event-ticketer/internal/service"
	"event-ticketer/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationService service.ModerationService
}

func NewModerationHandler(moderationService service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

type moderationRequest struct {
	Notes string `json:"notes"`
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.moderationService.Approve(c.Request.Context(), middleware.CurrentUser(c), eventID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.SerializeEvent(event))
}

func (h *ModerationHandler) Reject(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.moderationService.Reject(c.Request.Context(), middleware.CurrentUser(c), eventID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.SerializeEvent(event))
}

// Queue lists events by moderation status, defaulting to pending.
func (h *ModerationHandler) Queue(c *gin.Context) {
	status := entity.ModerationStatus(c.Query("status"))

	events, err := h.moderationService.Queue(c.Request.Context(), middleware.CurrentUser(c), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
