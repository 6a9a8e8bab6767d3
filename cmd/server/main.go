package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/elyaddev/Silo/internal/config"
	"github.com/elyaddev/Silo/internal/gateway"
	"github.com/elyaddev/Silo/internal/handler"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/internal/router"
	"github.com/elyaddev/Silo/internal/service"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/mbeoliero/kit/log"
)

func main() {
	ctx := context.TODO()

	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	log.CtxInfo(ctx, "config loaded: mode=%s", cfg.Server.Mode)

	// Initialize Redis key prefix
	constant.InitRedisKeyPrefix(cfg.Redis.KeyPrefix)
	log.CtxInfo(ctx, "redis key prefix: %s", constant.GetRedisKeyPrefix())

	// Initialize repositories
	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		log.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	// Check database connection
	if err := repos.CheckConnection(ctx); err != nil {
		log.CtxError(ctx, "database connection check failed: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "database connection established")

	// Initialize services
	authService := service.NewAuthService(repos.Profile, cfg, repos.Redis)
	activityService := service.NewActivityService(repos.Activity)
	roomService := service.NewRoomService(repos.Room, repos.Discussion)
	discussionService := service.NewDiscussionService(repos, activityService)
	replyService := service.NewReplyService(repos, discussionService, activityService)
	directService := service.NewDirectService(repos, activityService)
	notificationService := service.NewNotificationService(repos)
	searchService := service.NewSearchService(repos.Discussion, repos.Message)

	// Initialize WebSocket row-feed server
	wsServer := gateway.NewWsServer(cfg, repos.Redis, service.NewRealtimeAccess(repos))

	// Wire the realtime publisher into the writing services
	replyService.SetPublisher(wsServer)
	directService.SetPublisher(wsServer)
	notificationService.SetPublisher(wsServer)

	// Start WebSocket server
	wsServer.Run(ctx)
	log.CtxInfo(ctx, "websocket server started")

	// Initialize handlers
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Room:         handler.NewRoomHandler(roomService),
		Discussion:   handler.NewDiscussionHandler(discussionService, searchService),
		Reply:        handler.NewReplyHandler(replyService),
		Direct:       handler.NewDirectHandler(directService),
		Notification: handler.NewNotificationHandler(notificationService),
		Activity:     handler.NewActivityHandler(activityService),
	}

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.HTTPPort)),
	)

	// Setup routes
	router.SetupRouter(h, handlers, wsServer)

	log.CtxInfo(ctx, "server starting on port %d", cfg.Server.HTTPPort)

	// Start server in goroutine
	go func() {
		h.Spin()
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.CtxInfo(ctx, "shutting down server...")

	// Graceful shutdown
	if err := h.Shutdown(ctx); err != nil {
		log.CtxError(ctx, "server shutdown error: %v", err)
	}

	log.CtxInfo(ctx, "server stopped")
}
