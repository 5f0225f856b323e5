package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatsync-service/internal/auth"
	"chatsync-service/internal/blob"
	"chatsync-service/internal/config"
	"chatsync-service/internal/db"
	"chatsync-service/internal/handlers"
	"chatsync-service/internal/livefeed"
	"chatsync-service/internal/middleware"
	"chatsync-service/internal/observability"
	"chatsync-service/internal/rabbitmq"
	"chatsync-service/internal/repositories"
	"chatsync-service/internal/stream"
	"chatsync-service/internal/telemetry"
	"chatsync-service/internal/ws"
)

const serviceName = "chatsync-service"

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Info().Str("mode", rabbitmq.PublisherMode(auditPublisher)).Msg("audit publisher ready")
	audit := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRoutingKey, serviceName, cfg.Environment)

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Warn().Err(err).Msg("ws event publishing disabled")
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	userRepo := repositories.NewUserRepo(database)
	sessionRepo := repositories.NewSessionRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	statusRepo := repositories.NewStatusRepo(database)

	issuer := auth.NewService(userRepo, sessionRepo, cfg.TokenTTL)

	blobs, err := blob.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to open upload dir")
	}

	bus := stream.NewBus()
	feeds := livefeed.NewService(bus, chatRepo, messageRepo, statusRepo, cfg.ChatListLimit, cfg.StatusWindow)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(issuer, audit)
	profileHandler := handlers.NewProfileHandler(userRepo, blobs, audit)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, userRepo, bus, audit, cfg.ChatListLimit)
	statusHandler := handlers.NewStatusHandler(statusRepo, chatRepo, userRepo, blobs, bus, audit, cfg.StatusWindow)
	wsHandler := ws.NewSubscriptionHandler(hub, feeds, chatRepo, issuer)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.MaxMultipartMemory = cfg.MaxUploadSize

	authMiddleware := middleware.AuthMiddleware(issuer)

	router.POST("/auth/signup", authHandler.SignUp)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)

	router.GET("/me", authMiddleware, profileHandler.Me)
	router.PATCH("/me", authMiddleware, profileHandler.Update)
	router.POST("/me/avatar", authMiddleware, profileHandler.UploadAvatar)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats", authMiddleware, chatHandler.StartChat)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetMessages)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.PostMessage)

	router.GET("/statuses", authMiddleware, statusHandler.ListStatuses)
	router.POST("/statuses", authMiddleware, statusHandler.CreateStatus)

	router.GET("/ws/chats", wsHandler.HandleChats)
	router.GET("/ws/chats/:chat_id/messages", wsHandler.HandleMessages)
	router.GET("/ws/statuses", wsHandler.HandleStatuses)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(cfg.UploadBaseURL, cfg.UploadDir)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugAuditRoutes)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
