package transport

import (
	"net/http"
	"time"

	repository "event-ticketer/internal/database/postgres"
	"event-ticketer/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Event      *EventHandler
	Order      *OrderHandler
	Cart       *CartHandler
	Moderation *ModerationHandler
	Chat       *ChatHandler
}

func InitRoutes(h *Handlers, userRepo repository.UserRepository, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.Identity(userRepo))

	api := router.Group("/api/v1")
	{
		events := api.Group("/events")
		{
			events.GET("", h.Event.ListEvents)
			events.GET("/search", h.Event.SearchEvents)
			events.GET("/mine", h.Event.MyEvents)
			events.POST("", h.Event.CreateEvent)
			events.GET("/:id", h.Event.GetEvent)
			events.PUT("/:id", h.Event.UpdateEvent)

			events.POST("/:id/purchase", h.Order.PurchaseTicket)

			events.GET("/:id/messages", h.Chat.ListMessages)
			events.POST("/:id/messages", h.Chat.SendMessage)
			events.GET("/:id/participants", h.Chat.ListParticipants)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", h.Order.ListMyOrders)
			orders.GET("/:id", h.Order.GetOrder)
		}

		cart := api.Group("/cart")
		{
			cart.GET("", h.Cart.GetCart)
			cart.POST("/items", h.Cart.AddItem)
			cart.PUT("/items/:id", h.Cart.UpdateItem)
			cart.DELETE("/items/:id", h.Cart.RemoveItem)
			cart.POST("/checkout", h.Cart.Checkout)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/moderation", h.Moderation.Queue)
			admin.POST("/events/:id/approve", h.Moderation.Approve)
			admin.POST("/events/:id/reject", h.Moderation.Reject)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
