package transport

import (
	"net/http"
	"strconv"
	"time"

	"event-ticketer/internal/service"
	"event-ticketer/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), middleware.CurrentUser(c), eventID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        message.ID,
		"sender":    message.SenderName,
		"content":   message.Content,
		"timestamp": message.CreatedAt.Format(time.RFC3339),
	})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), middleware.CurrentUser(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	feed := make([]gin.H, 0, len(messages))
	for _, message := range messages {
		feed = append(feed, gin.H{
			"sender":    message.SenderName,
			"content":   message.Content,
			"timestamp": message.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": feed})
}

func (h *ChatHandler) ListParticipants(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	participants, err := h.chatService.GetParticipants(c.Request.Context(), middleware.CurrentUser(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}
