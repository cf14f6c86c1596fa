package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/websocket"
	"github.com/servicioshogar/chat/internal/config"
	"github.com/servicioshogar/chat/internal/gateway"
	"github.com/servicioshogar/chat/internal/handler"
	"github.com/servicioshogar/chat/internal/middleware"
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

	// Messaging API (auth required)
	api := h.Group("/api/mvp3/messages", middleware.JWTAuth())
	{
		api.GET("/conversations", handlers.Conversation.ListConversations)
		api.POST("/conversations", handlers.Conversation.CreateConversation)
		api.GET("/conversations/:id", handlers.Conversation.GetConversation)
		api.POST("/conversations/:id/read", handlers.Conversation.MarkRead)
		api.GET("/conversations/:id/messages", handlers.Message.PageMessages)
		api.POST("/conversations/:id/messages", handlers.Message.SendMessage)
		api.GET("/conversations/:id/messages/since", handlers.Message.MessagesSince)
		api.GET("/unread", handlers.Conversation.TotalUnread)
	}

	// Internal routes for the marketplace core (shared-token auth)
	internal := h.Group("/internal", middleware.InternalAuth())
	{
		internal.PUT("/users", handlers.User.UpsertProfile)
	}

	// WebSocket route using hertz-contrib/websocket with proper origin validation
	allowedOrigins := cfg.Server.AllowedOrigins
	upgrader := &websocket.HertzUpgrader{
		CheckOrigin: func(ctx *app.RequestContext) bool {
			origin := string(ctx.Request.Header.Peek("Origin"))
			return gateway.OriginAllowed(origin, allowedOrigins)
		},
	}

	h.GET("/ws", func(ctx context.Context, c *app.RequestContext) {
		wsServer.HandleHertzConnection(ctx, c, upgrader)
	})
}

// Handlers holds all HTTP handlers
type Handlers struct {
	User         *handler.UserHandler
	Message      *handler.MessageHandler
	Conversation *handler.ConversationHandler
}
