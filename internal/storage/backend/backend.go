// Package backend opens the slot store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/config"
	"github.com/cory-johannsen/pokegen/internal/storage"
	"github.com/cory-johannsen/pokegen/internal/storage/memory"
	"github.com/cory-johannsen/pokegen/internal/storage/postgres"
	"github.com/cory-johannsen/pokegen/internal/storage/sqlite"
)

var (
	_ storage.Slots = (*memory.Slots)(nil)
	_ storage.Slots = (*postgres.Slots)(nil)
	_ storage.Slots = (*sqlite.Store)(nil)
)

// Open returns the configured slot store and a func releasing its resources.
//
// Precondition: cfg has passed Validate.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Slots, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory storage; progress is lost on exit")
		return memory.New(), func() {}, nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		logger.Info("using sqlite storage", zap.String("path", cfg.Storage.SQLitePath))
		return store, func() { _ = store.Close() }, nil
	case config.BackendPostgres:
		slots, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		logger.Info("using postgres storage",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
		)
		return slots, slots.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
