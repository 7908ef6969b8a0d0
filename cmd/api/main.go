package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "qa-gate/docs" // This is for Swagger
	"qa-gate/internal/auth"
	"qa-gate/internal/config"
	"qa-gate/internal/database"
	"qa-gate/internal/handlers"
	"qa-gate/internal/logger"
	"qa-gate/internal/middleware"
	"qa-gate/internal/observability"
	"qa-gate/internal/repository"
	"qa-gate/internal/service"
)

// @title QA Gate API
// @version 1.0
// @description Compliance gate for materials, suppliers and products: tiered QA checks, approval lifecycle and override authorization

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.Info("Starting QA Gate", "version", cfg.App.Version, "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, cfg.Tracing, cfg.App)
	defer func() {
		tctx, cancel := shutdownContext(5 * time.Second)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			slog.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	slog.Info("Database connection established")

	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations(ctx, os.DirFS(cfg.Database.MigrationsPath)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	approvalRepo := repository.NewApprovalRepository(db.DB)
	overrideRepo := repository.NewOverrideRepository(db.DB)
	documentRepo := repository.NewDocumentRepository(db.DB)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	capabilities := auth.NewRoleCapabilities(cfg.Capabilities.RoleCapabilities)
	approvalSvc := service.NewApprovalService(approvalRepo, capabilities)
	overrideSvc := service.NewOverrideService(overrideRepo, capabilities, cfg.Override)
	gateSvc := service.NewGateService(approvalSvc, overrideSvc)
	documentSvc := service.NewDocumentService(documentRepo)

	// Initialize middleware
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	go rateLimiter.Run(ctx)

	router := &handlers.Router{
		Health:    handlers.NewHealthHandler(db, cfg.App.Version),
		Actor:     handlers.NewActorHandler(capabilities),
		Gate:      handlers.NewGateHandler(gateSvc),
		Entities:  handlers.NewEntityHandler(gateSvc, approvalSvc),
		Overrides: handlers.NewOverrideHandler(overrideSvc),
		Documents: handlers.NewDocumentHandler(documentSvc),
		Auth:      middleware.NewAuthMiddleware(authService),
		Caps:      middleware.NewCapabilityMiddleware(capabilities),
	}

	mux := http.NewServeMux()
	router.Register(mux)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := withMiddleware(mux, corsMw, rateLimiter)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := shutdownContext(30 * time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
