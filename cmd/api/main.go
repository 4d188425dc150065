package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sladedigital/places-service/internal/adapter/chromedp_browser"
	"github.com/sladedigital/places-service/internal/adapter/postgres"
	redis_adapter "github.com/sladedigital/places-service/internal/adapter/redis"
	"github.com/sladedigital/places-service/internal/delivery/http/handler"
	"github.com/sladedigital/places-service/internal/delivery/http/router"
	"github.com/sladedigital/places-service/internal/repository"
	"github.com/sladedigital/places-service/internal/scraper"
	"github.com/sladedigital/places-service/internal/usecase"
	"github.com/sladedigital/places-service/pkg/config"
	"github.com/sladedigital/places-service/pkg/logger"
	"github.com/sladedigital/places-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx := context.Background()

	// --- PostgreSQL ---
	// The pool is the single process-wide database handle: created here,
	// passed into the repositories, closed on shutdown.
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		slog.Error("Invalid PostgreSQL URL", "error", err)
		os.Exit(1)
	}
	poolCfg.MinConns = int32(cfg.PoolMinConns)
	poolCfg.MaxConns = int32(cfg.PoolMaxConns)
	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		slog.Error("Unable to bootstrap schema", "error", err)
		os.Exit(1)
	}
	slog.Info("PostgreSQL connection pool established",
		"min_conns", cfg.PoolMinConns, "max_conns", cfg.PoolMaxConns)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	placeRepo := postgres.NewPlaceRepo(dbpool, cfg.UpsertBatchSize)
	historyRepo := postgres.NewHistoryRepo(dbpool)
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)

	// --- Use Cases ---
	persistPool := usecase.NewPersistPool(cfg.PersistWorkers)
	defer persistPool.Stop()

	newBrowser := func(ctx context.Context, headless bool) (repository.Browser, error) {
		return chromedp_browser.NewBrowser(ctx, headless)
	}
	runCfg := usecase.RunConfig{
		RunTimeout:  time.Duration(cfg.ScrapeTimeoutSeconds) * time.Second,
		ScrollPause: time.Duration(cfg.ScrollPauseMS) * time.Millisecond,
		PlacePause:  time.Duration(cfg.PlacePauseMS) * time.Millisecond,
		DedupExpiry: time.Duration(cfg.DeduplicationHours) * time.Hour,
	}
	scrapeUC := usecase.NewScrapeUseCase(
		newBrowser, scraper.ExtractPlace,
		placeRepo, historyRepo, visitedRepo,
		persistPool, runCfg,
	)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(scrapeUC)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     httpRouter,
		ReadTimeout: 10 * time.Second,
		// Scrape runs are long; the write timeout must outlive the run deadline.
		WriteTimeout: runCfg.RunTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}
