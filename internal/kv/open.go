package kv

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"restotrack/shared/go/config"
)

// Open builds the backend selected by cfg.Driver, wrapped with call logging.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Driver {
	case config.DriverMemory:
		store = NewMemory()
	case config.DriverFile:
		store, err = NewFile(cfg.DataDir)
	case config.DriverSQLite:
		store, err = NewSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		db, openErr := OpenPostgres(ctx, cfg.DatabaseURL)
		if openErr != nil {
			return nil, openErr
		}
		store = NewPostgres(db)
	case config.DriverRedis:
		store, err = NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().Str("backend", cfg.Driver).Msg("storage ready")
	return Instrument(store, cfg.Driver, logger), nil
}
