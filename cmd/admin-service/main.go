package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendly/attendance-backend/internal/admin/events"
	"github.com/attendly/attendance-backend/internal/admin/handler"
	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/internal/admin/service"
	"github.com/attendly/attendance-backend/internal/notify/consumers"
	"github.com/attendly/attendance-backend/pkg/config"
	"github.com/attendly/attendance-backend/pkg/database"
	"github.com/attendly/attendance-backend/pkg/docstore"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/attendly/attendance-backend/pkg/messaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("admin-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("admin-service", cfg.Server.Environment)
	log.Info().Msg("starting Admin Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	pgStore := docstore.NewPostgresStore(db, log)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare document schema")
	}

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	documentPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeDocumentEvents, "admin-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create document event publisher")
	}
	adminPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeAdminEvents, "admin-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin event publisher")
	}

	// Writes to these groups drive the notification service
	store := docstore.NewObservedStore(pgStore, documentPublisher, log,
		consumers.GroupCheckRequests, consumers.GroupLineManagers)

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(store)
	attendanceRepo := repository.NewAttendanceRepository(store)
	masterSheetRepo := repository.NewMasterSheetRepository(store)
	lineManagerRepo := repository.NewLineManagerRepository(store)
	checkRequestRepo := repository.NewCheckRequestRepository(store)
	tokenRepo := repository.NewDeviceTokenRepository(store)

	// Initialize services
	importer := service.NewImporter(employeeRepo, masterSheetRepo, events.NewAdminEventPublisher(adminPublisher, log), log)
	attendanceService := service.NewAttendanceService(
		employeeRepo, attendanceRepo, cfg.Attendance.Location(), cfg.Attendance.HistoryLimit, log)
	employeeService := service.NewEmployeeService(employeeRepo, log)
	masterSheetService := service.NewMasterSheetService(masterSheetRepo, log)
	lineManagerService := service.NewLineManagerService(lineManagerRepo, masterSheetRepo, log)
	checkRequestService := service.NewCheckRequestService(checkRequestRepo, log)
	tokenService := service.NewTokenService(tokenRepo, log)

	// Initialize handlers
	handlers := &handler.Handlers{
		Attendance:    handler.NewAttendanceHandler(attendanceService, log),
		Employees:     handler.NewEmployeeHandler(employeeService, importer, cfg.Import.MaxRows, log),
		MasterSheet:   handler.NewMasterSheetHandler(masterSheetService, importer, cfg.Import.MaxRows, log),
		LineManagers:  handler.NewLineManagerHandler(lineManagerService, log),
		CheckRequests: handler.NewCheckRequestHandler(checkRequestService, tokenService, log),
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "admin-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.MaxBodySize(int64(cfg.Import.MaxUploadMB) << 20))
		handlers.Routes(r)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
