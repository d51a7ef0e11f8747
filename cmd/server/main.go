// Package main runs the event platform HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/authz"
	"github.com/gatherly/backend/internal/chat"
	"github.com/gatherly/backend/internal/connections"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/moderation"
	"github.com/gatherly/backend/internal/organizations"
	"github.com/gatherly/backend/internal/privacy"
	"github.com/gatherly/backend/internal/realtime"
	"github.com/gatherly/backend/internal/sessions"
	"github.com/gatherly/backend/internal/users"
	"github.com/gatherly/backend/internal/visibility"
	"github.com/gatherly/backend/pkg/database"
	"github.com/gatherly/backend/pkg/redis"
	"github.com/gatherly/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Role resolution
	authzStore := authz.NewPGStore(pool)
	resolver := authz.NewResolver(authzStore, logger)

	// Users and auth
	userRepo := users.NewRepository(pool)
	authHandler := auth.NewHandler(userRepo, jwtService, logger)

	// Privacy policies
	privacyRepo := privacy.NewRepository(pool)
	privacySvc := privacy.NewService(privacyRepo)
	privacyHandler := privacy.NewHandler(privacyRepo)

	// Connection graph
	connStore := connections.NewPGStore(pool)
	graph := connections.NewGraph(connStore, privacySvc, logger)
	connHandler := connections.NewHandler(graph, hub)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgSvc := organizations.NewService(orgRepo, logger)
	orgHandler := organizations.NewHandler(orgSvc)

	// Events and sessions
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, resolver)
	sessionRepo := sessions.NewRepository(pool)
	sessionHandler := sessions.NewHandler(sessionRepo, resolver)

	// Visibility filter: every profile read goes through it
	filter := visibility.NewFilter(graph, privacySvc, resolver, eventRepo, logger)
	userHandler := users.NewHandler(userRepo, filter, eventRepo)

	// Moderation
	modRepo := moderation.NewRepository(pool)
	gate := moderation.NewGate(modRepo, resolver, logger)
	modHandler := moderation.NewHandler(gate, hub)

	// Chat
	chatRepo := chat.NewRepository(pool)
	chatHandler := chat.NewHandler(chatRepo, gate, resolver, graph, hub)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	organizerOrAdmin := events.RequireEventRole(resolver, models.EventRoleOrganizer, models.EventRoleAdmin)
	anyEventRole := events.RequireEventRole(resolver)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Profiles
		api.GET("/me", userHandler.Me)
		api.PATCH("/me/profile", userHandler.UpdateProfile)
		api.GET("/users/:id/profile", userHandler.GetProfile)

		// Privacy settings and per-event overrides
		api.GET("/me/privacy", privacyHandler.GetSettings)
		api.PUT("/me/privacy", privacyHandler.UpdateSettings)
		api.GET("/me/privacy/events/:id", privacyHandler.GetOverride)
		api.PUT("/me/privacy/events/:id", privacyHandler.UpdateOverride)
		api.DELETE("/me/privacy/events/:id", privacyHandler.DeleteOverride)

		// Connections
		api.POST("/connections", connHandler.Request)
		api.POST("/connections/:id/respond", connHandler.Respond)
		api.GET("/connections", connHandler.List)
		api.GET("/connections/status", connHandler.Status)

		// Organizations
		api.POST("/organizations", orgHandler.Create)
		api.GET("/organizations", orgHandler.List)
		api.GET("/organizations/:id", orgHandler.Get)
		api.GET("/organizations/:id/members", orgHandler.ListMembers)
		api.POST("/organizations/:id/members", orgHandler.AddMember)
		api.PATCH("/organizations/:id/members/:userId", orgHandler.UpdateMemberRole)
		api.DELETE("/organizations/:id/members/:userId", orgHandler.RemoveMember)
		api.POST("/organizations/:id/transfer-ownership", orgHandler.TransferOwnership)
		api.POST("/organizations/:id/events", eventHandler.Create)

		// Events
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", anyEventRole, eventHandler.Get)
		api.PATCH("/events/:id", organizerOrAdmin, eventHandler.Update)
		api.DELETE("/events/:id", events.RequireEventRole(resolver, models.EventRoleAdmin), eventHandler.Delete)
		api.GET("/events/:id/members", anyEventRole, eventHandler.ListMembers)
		api.POST("/events/:id/members", organizerOrAdmin, eventHandler.AddMember)
		api.PATCH("/events/:id/members/:userId", organizerOrAdmin, eventHandler.UpdateMember)
		api.DELETE("/events/:id/members/:userId", organizerOrAdmin, eventHandler.RemoveMember)
		api.GET("/events/:id/attendees", anyEventRole, userHandler.ListAttendees)
		api.POST("/events/:id/invites", organizerOrAdmin, eventHandler.CreateInvite)
		api.POST("/invites/:token/accept", eventHandler.AcceptInvite)

		// Sessions and speaker assignments
		api.POST("/events/:id/sessions", organizerOrAdmin, sessionHandler.Create)
		api.GET("/events/:id/sessions", anyEventRole, sessionHandler.ListForEvent)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.DELETE("/sessions/:id", sessionHandler.Delete)
		api.POST("/sessions/:id/speakers", sessionHandler.AssignSpeaker)
		api.GET("/sessions/:id/speakers", sessionHandler.ListSpeakers)
		api.DELETE("/sessions/:id/speakers/:userId", sessionHandler.RemoveSpeaker)
		api.PUT("/sessions/:id/speakers/order", sessionHandler.ReorderSpeakers)

		// Moderation
		api.POST("/events/:id/moderation/ban", modHandler.Ban)
		api.POST("/events/:id/moderation/unban", modHandler.Unban)
		api.POST("/events/:id/moderation/chat-ban", modHandler.ChatBan)
		api.POST("/events/:id/moderation/chat-unban", modHandler.ChatUnban)
		api.GET("/events/:id/moderation/:userId", modHandler.GetRecord)

		// Chat
		api.POST("/events/:id/rooms", organizerOrAdmin, chatHandler.CreateRoom)
		api.GET("/events/:id/rooms", anyEventRole, chatHandler.ListRooms)
		api.POST("/rooms/:id/messages", chatHandler.PostMessage)
		api.GET("/rooms/:id/messages", chatHandler.ListMessages)
		api.POST("/messages/:userId", chatHandler.SendDirect)
		api.GET("/messages/:userId", chatHandler.ListDirect)
	}

	authenticate := func(token string) (uuid.UUID, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, err
		}
		return claims.UserID, nil
	}
	canJoin := func(ctx context.Context, room string, userID uuid.UUID) (bool, error) {
		switch {
		case strings.HasPrefix(room, "user_"):
			return room == realtime.UserRoom(userID), nil
		case strings.HasPrefix(room, "event_"):
			eventID, err := uuid.Parse(strings.TrimPrefix(room, "event_"))
			if err != nil {
				return false, nil
			}
			return resolver.CanAccessEvent(ctx, eventID, userID)
		case strings.HasPrefix(room, "room_"):
			roomID, err := uuid.Parse(strings.TrimPrefix(room, "room_"))
			if err != nil {
				return false, nil
			}
			chatRoom, err := chatRepo.Room(ctx, roomID)
			if err != nil || chatRoom == nil {
				return false, err
			}
			return resolver.CanAccessEvent(ctx, chatRoom.EventID, userID)
		}
		return false, nil
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, authenticate, canJoin))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
