package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/queue"
)

// The cleanup worker removes local temp files whose contents have already
// been transferred to object storage.
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

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	if err := q.SetupDeadLetterQueue(); err != nil {
		logger.Fatalf("Failed to set up dead letter queue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	handler := func(event *queue.CleanupEvent) error {
		if err := os.Remove(event.LocalPath); err != nil {
			if os.IsNotExist(err) {
				// Already gone, nothing to retry.
				return nil
			}
			logger.Errorf("Failed to remove %s: %v", event.LocalPath, err)
			return err
		}
		logger.Infof("Removed temp file %s", event.LocalPath)
		return nil
	}

	logger.Info("Cleanup worker started, waiting for events...")
	if err := q.ConsumeCleanup(ctx, handler); err != nil {
		logger.Fatalf("Failed to consume cleanup events: %v", err)
	}

	<-ctx.Done()
	logger.Info("Worker stopped")
}
