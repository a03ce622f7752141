package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ponyo877/sharepad/server/adaptor"
	"github.com/ponyo877/sharepad/server/domain"
	"github.com/ponyo877/sharepad/server/repository"
	"github.com/ponyo877/sharepad/server/usecase"
)

func loadConfig(log zerolog.Logger) domain.Config {
	viper.SetConfigName("sharepad")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetDefault("listen_addr", ":3001")
	viper.SetDefault("database_path", "sharepad.db")
	viper.SetDefault("no_persistence", false)
	viper.SetDefault("heartbeat_interval", 5*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Msg("failed to read config file")
		}
	}

	return domain.NewConfig(
		viper.GetString("listen_addr"),
		viper.GetString("database_path"),
		viper.GetBool("no_persistence"),
		viper.GetDuration("heartbeat_interval"),
	)
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := loadConfig(logger)

	var catalog usecase.CatalogStore
	if cfg.NoPersistence {
		logger.Info().Msg("persistence disabled, room catalog is volatile")
		catalog = repository.NewMemoryStore()
	} else {
		db, err := sql.Open("sqlite3", cfg.DatabasePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open room catalog")
		}
		defer db.Close()
		// An unreachable durable catalog is fatal: serving with an
		// inconsistent catalog view is worse than not starting.
		if err := db.Ping(); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("room catalog unreachable")
		}
		if catalog, err = repository.NewRepository(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare room catalog")
		}
		logger.Info().Str("path", cfg.DatabasePath).Msg("room catalog opened")
	}

	registry, err := usecase.NewRegistry(catalog, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed room registry")
	}

	ad := adaptor.NewAdaptor(registry, cfg, logger)
	srv := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     ad.Router(),
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
