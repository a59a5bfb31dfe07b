// Package driver opens the storage backend selected by configuration.
package driver

import (
	"context"
	"fmt"

	"github.com/beeconnect/server/internal/config"
	"github.com/beeconnect/server/internal/repository"
	"github.com/beeconnect/server/internal/repository/mongodb"
	"github.com/beeconnect/server/internal/repository/sqlite"
)

// Open connects to the configured store.
func Open(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongoDB:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	case config.StorageSQLite:
		return sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
