package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/identity"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.SetupTracing(ctx, serviceName, cfg.AppEnv, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Info().Str("publisher_mode", rabbitmq.PublisherMode(publisher)).Msg("event publisher ready")

	userRepo := repositories.NewUserRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)

	verifier := identity.NewJWTVerifier(cfg.JWTSecret)
	tracker := presence.NewTracker(userRepo)

	hub := ws.NewHub(logger)
	dispatcher := ws.NewDispatcher(hub, userRepo, chatRepo, messageRepo, reactionRepo, logger)
	socket := ws.NewSocketHandler(hub, dispatcher, verifier, userRepo, tracker, logger)

	audit := telemetry.NewAuditEmitter(publisher, "audit.messaging", serviceName, cfg.AppEnv, logger)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("create upload dir")
	}

	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, logger)
	uploadHandler := handlers.NewUploadHandler(dispatcher, messageRepo, cfg.UploadDir, audit, logger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	auth := middleware.AuthMiddleware(verifier, userRepo)

	router.GET("/chats", auth, chatHandler.ListChats)
	router.POST("/chats", auth, chatHandler.CreateChat)
	router.GET("/chats/:chat_id/messages", auth, chatHandler.GetChatMessages)
	router.POST("/chats/:chat_id/messages/:message_id/read", auth, chatHandler.MarkMessageRead)
	router.POST("/upload/:chat_id", auth, uploadHandler.Upload)

	router.GET("/ws", socket.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.UploadDir)

	if cfg.DebugRoutes {
		handlers.RegisterDebugRoutes(router, audit)
	}

	logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting messaging service")
	if err := router.Run(cfg.HTTPAddress()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
