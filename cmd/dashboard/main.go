package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/config"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/dashboard"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/dataset"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
)

const pageTitle = "東京都 人流ダッシュボード"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The map needs a working token before anything is served.
	var token string
	if cfg.MapboxEnabled {
		token = cfg.MapboxToken
		if cfg.MapboxVerify {
			client := mapbox.NewClient(token, cfg.MapboxTimeout, metrics, logger)
			if err := client.VerifyToken(ctx); err != nil {
				logger.Error("mapbox token rejected", "error", err)
				os.Exit(1)
			}
			logger.Info("mapbox token verified")
		}
	} else {
		logger.Info("mapbox disabled, using open-street-map tiles")
	}

	ds, err := dataset.Load(ctx, dataset.FromConfig(cfg), logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	var recorder dashboard.InteractionRecorder
	var writer *kafkaadapter.Writer
	if cfg.InteractionLogEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		recorder = writer
		logger.Info("interaction log enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	svc := dashboard.New(recorder, cfg.DefaultAreas, logger, metrics)
	svc.Attach(ds)

	page := httpadapter.NewPageConfig(pageTitle, token, cfg.MapboxStyle)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, page, logger, metrics)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

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
