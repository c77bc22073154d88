// Command server exposes the read-only HTTP API over the history store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/creator-intel/outperformer-scanner-go/internal/config"
	"github.com/creator-intel/outperformer-scanner-go/internal/db"
	"github.com/creator-intel/outperformer-scanner-go/internal/db/repository"
	"github.com/creator-intel/outperformer-scanner-go/internal/handler"
	"github.com/creator-intel/outperformer-scanner-go/internal/trend"
	"github.com/creator-intel/outperformer-scanner-go/pkg/logger"
)

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
	log := logger.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	historyRepo := repository.NewHistoryRepository(pool)
	quotaRepo := repository.NewQuotaRepository(pool)

	api := handler.New(historyRepo, quotaRepo, trend.NewAnalyzer(historyRepo), cfg)
	health := handler.NewHealthHandler(pool)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api.Register(router.Group("/api/v1"))
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		if err := srv.Close(); err != nil {
			log.Error("failed to close server", zap.Error(err))
		}
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
