package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/forecast-report-service/internal/adapter/accuweather"
	httpadapter "github.com/couchcryptid/forecast-report-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-report-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-report-service/internal/adapter/sqlite"
	"github.com/couchcryptid/forecast-report-service/internal/config"
	"github.com/couchcryptid/forecast-report-service/internal/observability"
	"github.com/couchcryptid/forecast-report-service/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	loaders := pipeline.MultiLoader{writer}

	var serverOpts []httpadapter.Option
	serverOpts = append(serverOpts, httpadapter.WithReportMode(cfg.ReportMode()))

	// AccuWeather fetching is feature-flagged via ACCUWEATHER_ENABLED / ACCUWEATHER_API_KEY.
	if cfg.AccuWeatherEnabled {
		client := accuweather.NewClient(cfg.AccuWeatherAPIKey, cfg.AccuWeatherBaseURL, cfg.AccuWeatherTimeout, metrics, logger)
		serverOpts = append(serverOpts, httpadapter.WithForecaster(
			accuweather.NewCachedForecaster(client, cfg.AccuWeatherCacheSize, metrics),
		))
		metrics.ForecastFetchEnabled.Set(1)
		logger.Info("accuweather fetching enabled", "cache_size", cfg.AccuWeatherCacheSize, "timeout", cfg.AccuWeatherTimeout)
	} else {
		logger.Info("accuweather fetching disabled")
	}

	var archive *sqlite.Archive
	if cfg.ArchivePath != "" {
		archive, err = sqlite.Open(cfg.ArchivePath, metrics, logger)
		if err != nil {
			logger.Error("failed to open report archive", "path", cfg.ArchivePath, "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, archive)
		serverOpts = append(serverOpts, httpadapter.WithArchive(archive))
		logger.Info("report archive enabled", "path", cfg.ArchivePath)
	}

	transformer := pipeline.NewTransformer(cfg.ReportMode(), logger)
	p := pipeline.New(reader, transformer, loaders, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, serverOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			logger.Error("report archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
