// Command enricher consumes summarize tasks from the queue and attaches AI
// summaries to stored outperformers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/db/repository"
	"github.com/creator-intel/outperformer-scanner-go/internal/insight"
	"github.com/creator-intel/outperformer-scanner-go/internal/queue"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

const defaultConcurrency = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("enricher")

	if cfg.Redis.URL == "" {
		log.Fatal("redis URL is required for the enrichment service")
	}
	if cfg.Ollama.BaseURL == "" {
		log.Fatal("ollama base URL is required for the enrichment service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	historyRepo := repository.NewHistoryRepository(pool)

	llm := insight.NewClient(insight.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		APIKey:  cfg.Ollama.APIKey,
		Timeout: cfg.Ollama.Timeout,
	})

	redisOpt, err := queue.ParseRedisURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal("failed to parse redis URL", zap.Error(err))
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: defaultConcurrency,
	})

	mux := asynq.NewServeMux()
	mux.Handle(queue.TypeSummarizeScan, queue.NewSummarizeHandler(llm, historyRepo))

	serverErr := make(chan error, 1)
	go func() {
		log.Info("enrichment service starting",
			zap.String("model", cfg.Ollama.Model),
			zap.Int("concurrency", defaultConcurrency),
		)
		serverErr <- srv.Run(mux)
	}()

	select {
	case err := <-serverErr:
		log.Fatal("queue server failed", zap.Error(err))
	case <-ctx.Done():
		log.Info("shutdown signal received")
		srv.Shutdown()
		log.Info("enrichment service stopped gracefully")
	}
}
