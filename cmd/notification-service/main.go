package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/internal/notify/consumers"
	"github.com/attendly/attendance-backend/internal/notify/dispatch"
	"github.com/attendly/attendance-backend/internal/notify/trigger"
	"github.com/attendly/attendance-backend/pkg/config"
	"github.com/attendly/attendance-backend/pkg/database"
	"github.com/attendly/attendance-backend/pkg/docstore"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("notification-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("notification-service", cfg.Server.Environment)
	log.Info().Msg("starting Notification Service")

	// Device tokens are read from the shared document database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	pushPublisher, err := messaging.NewPublisher(rmq, cfg.Notifications.Exchange, "notification-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create push publisher")
	}

	tokenRepo := repository.NewDeviceTokenRepository(docstore.NewPostgresStore(db, log))
	triggers := trigger.New(
		tokenRepo,
		dispatch.NewPushGateway(pushPublisher, log),
		trigger.Options{
			ChannelID:   cfg.Notifications.ChannelID,
			ClickAction: cfg.Notifications.ClickAction,
		},
		log,
	)

	// Start document event consumer
	documentConsumer, err := consumers.NewDocumentEventConsumer(rmq, triggers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create document event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := documentConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start document event consumer")
	}

	// Health endpoint only
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Recoverer(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "notification-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("health server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	// Cancel context to stop the consumer
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("stopped")
}
