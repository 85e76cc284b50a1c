package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/cache"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/database"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/migrate"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/service"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/storage"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/tracing"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	// Initialize database and run migrations
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrate.Up(context.Background(), database.DSN(cfg.Database)); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	repo := database.NewRepository(db)

	// Initialize object storage
	media, err := storage.New(cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize cache. The service degrades gracefully without it.
	var profileCache service.ProfileCache
	var throttle *cache.Cache
	redisCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warnf("Redis unavailable, running without cache: %v", err)
	} else {
		defer redisCache.Close()
		profileCache = redisCache
		throttle = redisCache
	}

	// Initialize cleanup queue. Also optional: without it temp files stay
	// on disk until swept manually.
	var cleanup service.CleanupPublisher
	var cleanupQueue *queue.Queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Warnf("Queue unavailable, temp file cleanup disabled: %v", err)
	} else {
		defer q.Close()
		cleanup = q
		cleanupQueue = q
	}

	// Ensure the upload temp dir exists
	if err := os.MkdirAll(cfg.Upload.TempDir, 0o755); err != nil {
		logger.Fatalf("Failed to create upload temp dir: %v", err)
	}

	tokens := auth.NewTokenService(cfg.Auth)
	svc := service.NewUserService(repo, media, tokens, profileCache, cleanup, logger)

	api := &API{
		svc:      svc,
		cfg:      cfg,
		db:       db,
		throttle: throttle,
		queue:    cleanupQueue,
	}

	router := setupRouter(api, cfg, tokens)

	// Metrics server on its own port
	metricsSrv := metrics.NewServer(cfg.Server.MetricsPort)
	go func() {
		if err := metricsSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	metricsSrv.Shutdown(ctx)

	logger.Info("Server stopped")
}
