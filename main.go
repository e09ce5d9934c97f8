package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/colbywhitledge-web/trader-hub-v1/config"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/api"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/cache"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/engine"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.LoggingConfig)
	logger.Info().Msg("configuration loaded")

	eng := engine.New(cfg.AnalysisConfig, logger)

	var cacheSvc *cache.Service
	if cfg.RedisConfig.Enabled {
		cacheSvc = cache.New(cfg.RedisConfig.Addr, cfg.RedisConfig.Password,
			cfg.RedisConfig.DB, cfg.RedisConfig.TTLSecs, logger)
		defer cacheSvc.Close()
	}

	var repo *store.Repository
	if cfg.DatabaseConfig.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		repo, err = store.NewRepository(ctx, cfg.DatabaseConfig.URL, logger)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("snapshot store unavailable; continuing without persistence")
			repo = nil
		} else {
			defer repo.Close()
		}
	}

	server := api.NewServer(api.ServerConfig{
		Host:      cfg.ServerConfig.Host,
		Port:      cfg.ServerConfig.Port,
		AuthToken: cfg.ServerConfig.AuthToken,
	}, eng, cacheSvc, repo, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
