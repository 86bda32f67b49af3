package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/repository"
)

var errSchemaMissing = errors.New("local_state table missing, run cmd/migrate up")

// openPostgresStore connects a small pool to DATABASE_URL and checks that the
// local_state migration has been applied before the guard relies on it.
func openPostgresStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repository.PostgresStateStore, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}

	var table *string
	if err := pool.QueryRow(ctx, `SELECT to_regclass('local_state')::text`).Scan(&table); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if table == nil {
		pool.Close()
		return nil, nil, errSchemaMissing
	}

	log.Info().
		Int32("max_conns", cfg.MaxDBConns).
		Msg("Guard store on PostgreSQL")

	return repository.NewPostgresStateStore(pool), pool.Close, nil
}
