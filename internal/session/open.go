package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/config"
	"github.com/spec-kit/pos-frontend/internal/persistence"
)

// Backends holds the connections opened for the configured store.
type Backends struct {
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
}

// Close releases every opened connection.
func (b *Backends) Close() {
	if b == nil {
		return
	}
	b.Postgres.Close()
	b.Redis.Close()
}

// OpenStore builds the token store selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (TokenStore, *Backends, error) {
	backends := &Backends{}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("session token kept in memory; it will not survive a restart")
		return NewMemoryStore(), backends, nil
	case config.StoreDriverFile, "":
		logger.Info("session token store", zap.String("driver", config.StoreDriverFile), zap.String("path", cfg.Store.FilePath))
		return NewFileStore(cfg.Store.FilePath), backends, nil
	case config.StoreDriverRedis:
		backends.Redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		store := NewRedisStore(backends.Redis.Client, cfg.Store.KeyPrefix, cfg.Store.Slot)
		logger.Info("session token store", zap.String("driver", config.StoreDriverRedis), zap.String("key", store.Key()))
		return store, backends, nil
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		backends.Postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				backends.Close()
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		logger.Info("session token store", zap.String("driver", config.StoreDriverPostgres), zap.String("slot", cfg.Store.Slot))
		return NewPostgresStore(pg.PoolHandle(), cfg.Store.Slot), backends, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
