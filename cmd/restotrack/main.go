package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"restotrack/internal/kv"
	"restotrack/internal/persistence"
	"restotrack/internal/restaurants"
	"restotrack/shared/go/config"
	"restotrack/shared/go/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("restotrack stopped")
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobal(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	adapter := persistence.New(store,
		persistence.WithKey(cfg.Storage.Key),
		persistence.WithLogger(logger),
	)
	repo, err := restaurants.NewRepository(ctx, adapter, restaurants.WithLogger(logger))
	if err != nil {
		return err
	}

	if cfg.SeedDemo {
		if err := bootstrapDemoData(ctx, repo); err != nil {
			return err
		}
	}

	server := newHTTPServer(cfg, restaurants.NewService(repo, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Driver).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
