package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-data-viewer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-data-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/quake-data-viewer/internal/adapter/usgs"
	"github.com/couchcryptid/quake-data-viewer/internal/config"
	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
	"github.com/couchcryptid/quake-data-viewer/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var source domain.EventSource = usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, metrics, logger)
	if cfg.USGSCacheSize > 0 {
		cached, err := usgs.NewCachedSource(source, cfg.USGSCacheSize, cfg.USGSCacheTTL, domain.Clock(), metrics)
		if err != nil {
			logger.Error("failed to create query cache", "error", err)
			os.Exit(1)
		}
		source = cached
	}
	logger.Info("usgs source configured",
		"base_url", cfg.USGSBaseURL,
		"timeout", cfg.USGSTimeout,
		"cache_size", cfg.USGSCacheSize,
		"cache_ttl", cfg.USGSCacheTTL,
	)

	// Record publishing is feature-flagged via KAFKA_ENABLED.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("record publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("record publishing disabled")
	}

	p := pipeline.New(source, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	p.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
