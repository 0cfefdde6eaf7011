package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"polychat/internal/assistant"
	"polychat/internal/config"
	"polychat/internal/db"
	"polychat/internal/handlers"
	"polychat/internal/jobqueue"
	"polychat/internal/middleware"
	"polychat/internal/observability"
	"polychat/internal/rabbitmq"
	"polychat/internal/repositories"
	"polychat/internal/telemetry"
	"polychat/internal/translate"
	"polychat/internal/ws"
)

const serviceName = "polychat"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	translate.ExtendLanguages(cfg.ExtraLanguages)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	} else {
		log.Printf("observability events disabled: %v", err)
	}

	emitter := telemetry.NewAuditEmitter(publisher, "audit.polychat", serviceName, cfg.Environment)

	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	translationRepo := repositories.NewTranslationRepo(database)
	profileRepo := repositories.NewProfileRepo(database)
	stickerRepo := repositories.NewStickerRepo(database)

	var provider translate.Provider
	var responder assistant.Responder
	if cfg.OpenAIAPIKey != "" {
		provider, err = translate.NewLangchainProvider(translate.Config{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			log.Fatalf("failed to init translation provider: %v", err)
		}
		responder, err = assistant.NewLangchainResponder(assistant.Config{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			log.Fatalf("failed to init assistant responder: %v", err)
		}
	} else {
		log.Printf("no api key configured, translation pipeline is a noop")
		provider = translate.NoopProvider{}
		responder = noopResponder{}
	}

	hub := ws.NewHub()

	scheduler, err := jobqueue.NewScheduler(context.Background(), cfg.DatabaseDSN, jobqueue.WorkerDeps{
		Chats:           chatRepo,
		Messages:        messageRepo,
		Translations:    translationRepo,
		Profiles:        profileRepo,
		Provider:        provider,
		Responder:       responder,
		Hub:             hub,
		ProviderTimeout: cfg.ProviderTimeout,
	}, cfg.QueueMaxWorkers)
	if err != nil {
		log.Fatalf("failed to init job queue: %v", err)
	}
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("failed to start job queue: %v", err)
	}

	validator := middleware.NewTokenValidator(cfg.JWTSecret)

	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, translationRepo, profileRepo, stickerRepo, hub, scheduler)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	stickerHandler := handlers.NewStickerHandler(stickerRepo)
	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, profileRepo, validator)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(validator)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats/direct", authMiddleware, chatHandler.CreateDirectChat)
	router.POST("/chats/group", authMiddleware, chatHandler.CreateGroupChat)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetChatMessages)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.PostChatMessage)

	router.GET("/me", authMiddleware, profileHandler.GetMe)
	router.PUT("/me", authMiddleware, profileHandler.UpdateMe)
	router.PUT("/me/status", authMiddleware, profileHandler.UpdateStatus)
	router.GET("/users/search", authMiddleware, profileHandler.SearchUsers)

	router.GET("/stickers", authMiddleware, stickerHandler.ListStickers)

	router.GET("/ws/chats/:chat_id", chatWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	go func() {
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Printf("job queue stop: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}

type noopResponder struct{}

func (noopResponder) Generate(ctx context.Context, transcript, chatName string) (string, error) {
	return "", nil
}
