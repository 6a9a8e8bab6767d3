package router

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/elyaddev/Silo/internal/config"
	"github.com/elyaddev/Silo/internal/gateway"
	"github.com/elyaddev/Silo/internal/handler"
	"github.com/elyaddev/Silo/internal/middleware"
	"github.com/hertz-contrib/websocket"
)

// SetupRouter sets up all routes
func SetupRouter(h *server.Hertz, handlers *Handlers, wsServer *gateway.WsServer) {
	cfg := config.GlobalConfig

	// CORS middleware
	h.Use(middleware.CORS())

	// Health check
	h.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes (no auth required)
	authGroup := h.Group("/auth")
	{
		authGroup.POST("/register", handlers.Auth.Register)
		authGroup.POST("/login", handlers.Auth.Login)
	}

	// Profile routes (auth required)
	profileGroup := h.Group("/profile", middleware.JWTAuth())
	{
		profileGroup.POST("/logout", handlers.Auth.Logout)
		profileGroup.GET("/me", handlers.Auth.GetMyProfile)
		profileGroup.GET("/:user_id", handlers.Auth.GetProfile)
		profileGroup.PUT("/me", handlers.Auth.UpdateProfile)
	}

	// Room routes (auth required)
	roomGroup := h.Group("/room", middleware.JWTAuth())
	{
		roomGroup.POST("/create", handlers.Room.CreateRoom)
		roomGroup.GET("/list", handlers.Room.ListRooms)
		roomGroup.GET("/:room_id", handlers.Room.GetRoom)
	}

	// Discussion routes (auth required)
	discussionGroup := h.Group("/discussion", middleware.JWTAuth())
	{
		discussionGroup.POST("/create", handlers.Discussion.CreateDiscussion)
		discussionGroup.GET("/list", handlers.Discussion.ListDiscussions)
		discussionGroup.GET("/search", handlers.Discussion.Search)
		discussionGroup.GET("/:discussion_id", handlers.Discussion.GetDiscussion)
		discussionGroup.GET("/:discussion_id/alias", handlers.Discussion.GetAlias)
	}

	// Reply routes (auth required)
	replyGroup := h.Group("/reply", middleware.JWTAuth())
	{
		replyGroup.POST("/post", handlers.Reply.PostReply)
		replyGroup.GET("/list", handlers.Reply.ListReplies)
		replyGroup.DELETE("/:message_id", handlers.Reply.DeleteReply)
	}

	// Direct message routes (auth required)
	dmGroup := h.Group("/dm", middleware.JWTAuth())
	{
		dmGroup.POST("/request", handlers.Direct.SendRequest)
		dmGroup.POST("/request/:request_id/respond", handlers.Direct.RespondRequest)
		dmGroup.GET("/requests", handlers.Direct.ListRequests)
		dmGroup.GET("/list", handlers.Direct.ListSummaries)
		dmGroup.GET("/unread_total", handlers.Direct.TotalUnread)
		dmGroup.POST("/send", handlers.Direct.SendMessage)
		dmGroup.GET("/:conversation_id/messages", handlers.Direct.ListMessages)
		dmGroup.POST("/:conversation_id/mark_read", handlers.Direct.MarkRead)
		dmGroup.POST("/:conversation_id/leave", handlers.Direct.Leave)
		dmGroup.DELETE("/message/:message_id", handlers.Direct.DeleteMessage)
	}

	// Notification routes (auth required)
	notifyGroup := h.Group("/notification", middleware.JWTAuth())
	{
		notifyGroup.GET("/list", handlers.Notification.List)
		notifyGroup.GET("/unread_count", handlers.Notification.UnreadCount)
		notifyGroup.POST("/:notification_id/read", handlers.Notification.MarkRead)
		notifyGroup.POST("/read_all", handlers.Notification.MarkAllRead)
	}

	// Activity and report routes (auth required)
	activityGroup := h.Group("/activity", middleware.JWTAuth())
	{
		activityGroup.GET("/list", handlers.Activity.List)
		activityGroup.POST("/report", handlers.Activity.ReportUser)
	}

	// WebSocket route using hertz-contrib/websocket with origin validation
	allowedOrigins := cfg.Server.AllowedOrigins
	upgrader := &websocket.HertzUpgrader{
		CheckOrigin: func(ctx *app.RequestContext) bool {
			return checkOrigin(ctx, allowedOrigins)
		},
	}

	h.GET("/ws", func(ctx context.Context, c *app.RequestContext) {
		wsServer.HandleHertzConnection(ctx, c, upgrader)
	})
}

// checkOrigin validates the Origin header against allowed origins
func checkOrigin(ctx *app.RequestContext, allowedOrigins []string) bool {
	origin := string(ctx.Request.Header.Peek("Origin"))

	// If no origin header, allow (same-origin request or non-browser client)
	if origin == "" {
		return true
	}

	// If no allowed origins configured, reject all cross-origin requests in production
	if len(allowedOrigins) == 0 {
		return false
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			// Wildcard - allow all (only use in development!)
			return true
		}
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}

	return false
}

// Handlers holds all HTTP handlers
type Handlers struct {
	Auth         *handler.AuthHandler
	Room         *handler.RoomHandler
	Discussion   *handler.DiscussionHandler
	Reply        *handler.ReplyHandler
	Direct       *handler.DirectHandler
	Notification *handler.NotificationHandler
	Activity     *handler.ActivityHandler
}
