package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockweeks/internal/api"
	"github.com/andresuchdata/stockweeks/internal/cache"
	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/andresuchdata/stockweeks/internal/metrics"
	"github.com/andresuchdata/stockweeks/internal/service"
	"github.com/andresuchdata/stockweeks/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	source, closeSource, err := feed.NewSource(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("source", cfg.Feed.Source).Msg("Failed to initialize feed source")
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close feed source")
		}
	}()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	m := metrics.New("stockweeks")
	store := feed.NewStore()
	loader := &feed.Loader{
		Source: source,
		Filter: feed.FilterFromConfig(cfg.Feed),
	}
	reports := service.NewReportService(store, loader,
		service.WithCache(reportCache),
		service.WithRecorder(m),
		service.WithDefaultNWeeks(cfg.Engine.DirectSellThroughWeeks),
	)

	if cfg.Feed.ReloadOnStart {
		loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		if _, err := reports.Reload(loadCtx); err != nil {
			// Served empty until the next successful reload.
			logger.Log.Error().Err(err).Msg("Initial feed load failed")
		}
		cancel()
	}

	router := api.NewRouter(&api.Services{
		Reports: reports,
		Store:   store,
		Metrics: m,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("feed_source", cfg.Feed.Source).
			Float64("n_weeks", cfg.Engine.DirectSellThroughWeeks).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// Give in-flight requests 5 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
