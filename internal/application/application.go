package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/auth"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/config"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/database"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/handler"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/kafka"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/router"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/scheduler"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/service"
)

// API приложение: HTTP-сервер, планировщик отложенных чатов, Kafka-продюсер.
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	sched    *scheduler.Scheduler
	producer *kafka.Producer
}

// NewAPI собирает приложение: миграции, база, сервисы, маршруты.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicChat)
	tokens := auth.NewJWTManager(cfg.JWTSecret, 12*time.Hour)

	chatSvc := service.NewChatService(db, producer, cfg.ResponseSLA)
	employeeSvc := service.NewEmployeeService(db)
	knowledgeSvc := service.NewKnowledgeService(db)
	ratingSvc := service.NewRatingService(db)

	api := handler.NewAPI(chatSvc, employeeSvc, knowledgeSvc, ratingSvc, tokens)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(api),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		httpSrv:  httpSrv,
		sched:    scheduler.New(chatSvc),
		producer: producer,
	}, nil
}

// Run запускает сервер и планировщик, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Swagger spec:  %s/swagger/openapi.json", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  Chat API:      %s/api/chat", base)

	if err := a.sched.Start(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.sched.Stop()
	if err := a.producer.Close(); err != nil {
		log.Printf("kafka: close: %v", err)
	}
	return nil
}
