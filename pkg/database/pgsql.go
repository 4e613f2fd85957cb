package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// requiredTables must exist once migrations have run.
var requiredTables = []string{
	"movimenti_contanti",
	"pagamenti_pos",
	"fondo_cassa",
	"fatture",
	"righe_fatture",
	"numerazione_fatture",
	"clienti",
	"prodotti",
	"utenti",
}

// PgxPoolConfig tunes the PostgreSQL pool.
type PgxPoolConfig struct {
	URL string
	// TimeZone is set on every session so now() and CURRENT_DATE follow the shop clock.
	TimeZone string
	// CheckSchema fails the connection when a required table is missing.
	CheckSchema bool
}

// NewPgxPool connects to PostgreSQL and pings it before returning.
func NewPgxPool(ctx context.Context, cfg PgxPoolConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	// ParseConfig also honours PGHOST, PGUSER and friends.
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}
	if poolCfg.MaxConnIdleTime == 0 || poolCfg.MaxConnIdleTime > 10*time.Minute {
		poolCfg.MaxConnIdleTime = 10 * time.Minute
	}
	if cfg.TimeZone != "" {
		poolCfg.ConnConfig.RuntimeParams["timezone"] = cfg.TimeZone
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if cfg.CheckSchema {
		if err := checkSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	slog.Info("Connected to PostgreSQL",
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.String("database", poolCfg.ConnConfig.Database),
		slog.Int("max_conns", int(poolCfg.MaxConns)))
	return pool, nil
}

func checkSchema(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name = ANY($1)`, requiredTables)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	present := make(map[string]bool, len(found))
	for _, name := range found {
		present[name] = true
	}
	for _, name := range requiredTables {
		if !present[name] {
			return fmt.Errorf("table %s is missing, run jos_admin migrate up", name)
		}
	}
	return nil
}

// ClosePgxPool closes the pool; a nil pool is ignored.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	pool.Close()
	slog.Info("PostgreSQL connection pool closed")
}
