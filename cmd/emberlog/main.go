package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/emberlog/emberlog/internal/app"
	"github.com/emberlog/emberlog/internal/auth"
	"github.com/emberlog/emberlog/internal/journal"
	"github.com/emberlog/emberlog/internal/observability"
	"github.com/emberlog/emberlog/internal/platform/cache"
	"github.com/emberlog/emberlog/internal/platform/db"
	"github.com/emberlog/emberlog/internal/rbac"
	"github.com/emberlog/emberlog/internal/shared"
	"github.com/emberlog/emberlog/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	registry, err := loadRegistry(cfg)
	if err != nil {
		logger.Error("load role registry", slog.Any("error", err))
		os.Exit(1)
	}
	resolver := rbac.NewResolver(registry)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "emberlog_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, registry)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	guard := rbac.Middleware{Resolver: resolver, Logger: logger}

	journalStorage := journal.NewStorage(dbpool)
	journalService := journal.NewService(journalStorage, logger)
	journalHandler := journal.NewHandler(logger, journalService, guard)

	rbacHandler := rbac.NewHandler(logger, registry, resolver, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		JournalHandler: journalHandler,
		RBACHandler:    rbacHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func loadRegistry(cfg *app.Config) (*rbac.Registry, error) {
	if cfg.RolesFile == "" {
		return rbac.BuiltinRegistry(), nil
	}
	return rbac.LoadRegistryFile(cfg.RolesFile)
}
