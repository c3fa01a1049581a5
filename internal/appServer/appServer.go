package appServer

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-ticketer/config"
	repository "event-ticketer/internal/database/postgres"
	rediscache "event-ticketer/internal/database/redis"
	"event-ticketer/internal/service"
	"event-ticketer/internal/transport"
	"event-ticketer/pkg/postgres"
	"event-ticketer/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Optional event cache
	var eventCache *rediscache.EventCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		eventCache = rediscache.NewEventCache(redisClient, cfg.Cache.EventTTL)
		logrus.Info("Event cache initialized")
	} else {
		logrus.Warn("Redis disabled, event cache off")
	}

	// Services
	eventService := service.NewEventService(eventRepo, eventCache, cfg.Moderation.ResetOnEdit)
	orderService := service.NewOrderService(orderRepo, eventCache)
	cartService := service.NewCartService(cartRepo, eventCache)
	moderationService := service.NewModerationService(eventRepo, eventCache)
	chatService := service.NewChatService(chatRepo, orderRepo, eventRepo,
		cfg.Chat.MaxMessageLength, cfg.Chat.OrganizerAccess)

	handlers := &transport.Handlers{
		Event:      transport.NewEventHandler(eventService),
		Order:      transport.NewOrderHandler(orderService),
		Cart:       transport.NewCartHandler(cartService),
		Moderation: transport.NewModerationHandler(moderationService),
		Chat:       transport.NewChatHandler(chatService),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handlers, userRepo, cfg.Server.Timeout)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
