package transport

import (
	"net/http"
	"strconv"

	"event-ticketer/internal/service"
	"event-ticketer/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type purchaseRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *OrderHandler) PurchaseTicket(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.PurchaseTicket(c.Request.Context(), middleware.CurrentUser(c), eventID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":    order.ID,
		"event_id":    order.EventID,
		"quantity":    order.Quantity,
		"unit_price":  order.UnitPrice.StringFixed(2),
		"total_price": order.TotalPrice().StringFixed(2),
		"status":      order.Status,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), middleware.CurrentUser(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.orderService.ListMyOrders(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
