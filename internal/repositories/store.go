// Package repositories selects and opens the configured storage backend.
package repositories

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/gestionale-jos/jos_backend/internal/repositories/database/pgsql"
	"github.com/gestionale-jos/jos_backend/internal/repositories/database/sqlite"
	"github.com/gestionale-jos/jos_backend/internal/repositories/memory"
	"github.com/gestionale-jos/jos_backend/pkg/database"
)

// Open connects to cfg.StoreBackend and returns its repositories with a cleanup func.
// When migrate is set, pending "up" migrations are applied first.
func Open(ctx context.Context, cfg *config.Config, migrate bool) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if migrate {
			if err := database.MigratePostgres(cfg.DatabaseURL, database.Up); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, database.PgxPoolConfig{
			URL:         cfg.DatabaseURL,
			TimeZone:    cfg.ShopLocation.String(),
			CheckSchema: cfg.EnableDBCheck,
		})
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		slog.Info("Using PostgreSQL store")
		return pgsql.NewRepositoryProvider(pool, cfg.ShopLocation), func() { database.ClosePgxPool(pool) }, nil

	case config.StoreSQLite:
		if migrate {
			if err := database.MigrateSQLite(cfg.SQLitePath, database.Up); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		slog.Info("Using SQLite store", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db, cfg.ShopLocation), func() { db.Close() }, nil

	case config.StoreMemory:
		slog.Warn("Using in-memory store; data is lost on exit")
		return memory.NewRepositoryProvider(), func() {}, nil

	default:
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Migrate applies migrations in dir for the configured backend. The memory store has none.
func Migrate(cfg *config.Config, dir database.Direction) error {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return database.MigratePostgres(cfg.DatabaseURL, dir)
	case config.StoreSQLite:
		return database.MigrateSQLite(cfg.SQLitePath, dir)
	case config.StoreMemory:
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
