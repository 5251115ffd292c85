package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/mahjong-score-service/internal/app"
	"github.com/maxviazov/mahjong-score-service/internal/config"
	"github.com/maxviazov/mahjong-score-service/internal/handler"
	"github.com/maxviazov/mahjong-score-service/internal/logger"
	"github.com/maxviazov/mahjong-score-service/internal/metrics"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/rs/cors"
)

func main() {
	configPath := flag.String("config", envOr("APP_CONFIG", "configs/config.yaml"), "path to the yaml config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	if cfg.Logger.ServiceName == "" {
		cfg.Logger.ServiceName = cfg.App.Name
	}
	if cfg.Logger.ServiceVersion == "" {
		cfg.Logger.ServiceVersion = cfg.App.Version
	}
	if cfg.Logger.Env == "" {
		switch cfg.App.Env {
		case "dev", "staging", "prod":
			cfg.Logger.Env = cfg.App.Env
		}
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	engine, err := cfg.Scoring.Engine()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid scoring ruleset")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("record store unavailable")
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Error().Err(err).Msg("closing record store")
		}
	}()

	seasons := service.NewSeasonCatalog(cfg.SeasonList())
	m := metrics.New(nil)

	records := service.NewRecordService(store.Records, store.Tx, seasons, appLogger)
	stats := service.NewStatsService(store.Records, engine, seasons, m, appLogger)

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), m.Middleware())
	handler.Register(router, handler.Deps{
		Pinger:         store.Pinger,
		Records:        records,
		Stats:          stats,
		Metrics:        m.Handler(),
		RequestTimeout: time.Duration(cfg.HTTP.RequestTimeout) * time.Second,
		Logger:         appLogger,
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", handler.RequestIDHeader},
		ExposedHeaders: []string{handler.RequestIDHeader},
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		appLogger.Info().
			Str("addr", srv.Addr).
			Str("backend", store.Backend).
			Str("season", seasons.Current()).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
