package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/everydog-league/api/internal/config"
	"github.com/everydog-league/api/internal/database"
	"github.com/everydog-league/api/internal/metrics"
	"github.com/everydog-league/api/internal/repository"
	"github.com/everydog-league/api/internal/seed"
	"github.com/rs/zerolog"
)

const connectTimeout = 30 * time.Second

// openStore connects the backend selected by cfg.Driver. The returned
// function releases it.
func openStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (repository.Store, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("prepare postgres schema: %w", err)
		}
		return store, pool.Close, nil

	case config.DriverMongo:
		client, db, err := database.NewMongo(ctx, cfg.MongoURL, cfg.DBName, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error().Err(err).Msg("mongo disconnect failed")
			}
		}
		return repository.NewMongo(db), closeFn, nil

	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		return repository.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// bootstrapStore seeds an empty store with the fixture events and ensures
// indexes.
func bootstrapStore(ctx context.Context, store repository.Store, seedFile string, logger zerolog.Logger) error {
	events, err := seed.Load(seedFile)
	if err != nil {
		return err
	}
	inserted, err := seed.Bootstrap(ctx, store, events, logger)
	if err != nil {
		return fmt.Errorf("bootstrap store: %w", err)
	}
	metrics.EventsSeeded.Set(float64(inserted))
	return nil
}
