// api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/api/config"
	"portfolio/api/database"
	"portfolio/api/handlers"
	"portfolio/api/logger"
	"portfolio/api/metrics"
	"portfolio/api/middleware"
	"portfolio/api/store"
	"portfolio/api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode == gin.ReleaseMode || cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	deps := map[string]handlers.Pinger{}

	// --- Aggregate counters ---
	analyticsStore := store.NewAnalyticsStore(
		store.WithLocation(cfg.Analytics.Location),
		store.WithLogger(logger.WithComponent(zl, "aggregator")),
	)
	m.RegisterTotals(analyticsStore)

	var workers sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	// --- Persistent counter store (PostgreSQL or file) ---
	var stateBackend store.StateStore
	switch {
	case cfg.State.DatabaseURL != "":
		dbClient, err := database.NewPostgresDB(ctx, cfg.State, logger.WithComponent(zl, "postgres"))
		if err != nil {
			return err
		}
		defer dbClient.Close()
		deps["postgres"] = dbClient
		stateBackend = store.NewPostgresStateStore(dbClient)
	case cfg.State.File != "":
		stateBackend = store.NewFileStateStore(cfg.State.File)
	default:
		zl.Warn("no DATABASE_URL or STATE_FILE set, analytics will not survive restarts")
	}

	if stateBackend != nil {
		saver := store.NewStateSaver(analyticsStore, stateBackend, cfg.State.FlushInterval, logger.WithComponent(zl, "state"))
		if err := saver.Restore(ctx); err != nil {
			zl.Error("failed to restore analytics state, starting empty", zap.Error(err))
		}
		workers.Add(1)
		go func() {
			defer workers.Done()
			saver.Run(workerCtx)
		}()
	}

	// --- Event archive (ClickHouse) ---
	var archiver handlers.EventArchiver
	var archive *store.EventArchive
	if cfg.ClickHouse.Enabled() {
		chClient, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger.WithComponent(zl, "clickhouse"))
		if err != nil {
			return err
		}
		defer chClient.Close()
		if err := chClient.EnsureSchema(ctx); err != nil {
			return err
		}
		deps["clickhouse"] = chClient

		archive = store.NewEventArchive(store.NewClickHouseSink(chClient), store.ArchiveOptions{
			BufferSize:    cfg.ClickHouse.BufferSize,
			BatchSize:     cfg.ClickHouse.BatchSize,
			FlushInterval: cfg.ClickHouse.FlushInterval,
			OnDrop:        m.ArchiveDropped.Inc,
		}, logger.WithComponent(zl, "archive"))
		archiver = archive

		workers.Add(1)
		go func() {
			defer workers.Done()
			archive.Run(workerCtx)
		}()
	}

	// --- Content ---
	contentStore, err := store.NewContentStore(cfg.ContentFile, logger.WithComponent(zl, "content"))
	if err != nil {
		return err
	}

	// --- Admin access ---
	guard := utils.NewAdminGuard(cfg.Admin.Password, cfg.Admin.PasswordHash)
	if !guard.Configured() {
		zl.Warn("ADMIN_PASSWORD is not set, admin endpoints will deny every request")
	}
	jwtSecret := cfg.Admin.JWTSecret
	if jwtSecret == "" {
		if jwtSecret, err = utils.GenerateSecret(32); err != nil {
			return err
		}
		zl.Warn("JWT_SECRET_KEY is not set, admin tokens are valid only until restart")
	}
	tokens := utils.NewTokenIssuer([]byte(jwtSecret), cfg.Admin.JWTTTL)

	// --- HTTP ---
	httpLogger := logger.WithComponent(zl, "http")
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(httpLogger),
		middleware.RequestLogger(httpLogger, m),
		middleware.CORSMiddleware(cfg.AllowedOrigins),
	)

	routes := handlers.Routes{
		Analytics: handlers.NewAnalyticsHandlers(analyticsStore, archiver, m, logger.WithComponent(zl, "track"), cfg.Analytics.MaxBodyBytes),
		Auth:      handlers.NewAuthHandlers(guard, tokens, httpLogger, cfg.Environment == "production"),
		Content:   handlers.NewContentHandlers(contentStore, httpLogger),
		Health:    handlers.NewHealthHandlers(deps),
		Admin:     middleware.AdminRequired(guard, tokens, httpLogger),
	}
	if cfg.MetricsEnabled {
		routes.Metrics = gin.WrapH(m.Handler())
	}
	handlers.RegisterRoutes(r, routes)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("portfolio API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		zl.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	// No more requests: stop accepting events, then let the workers
	// flush the final state and the archived tail.
	analyticsStore.Close()
	if archive != nil {
		archive.Close()
	}
	cancelWorkers()
	workers.Wait()

	zl.Info("server exited")
	return nil
}
