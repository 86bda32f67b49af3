package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/repository"
)

// applicationName identifies the front to Redis and PostgreSQL.
const applicationName = "questionnaire"

// OpenStateStore connects the guard store selected by GUARD_STORE. The
// returned close function releases any connection. The cookie kind has no
// shared store and yields nil.
func OpenStateStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.StateStore, func(), error) {
	noop := func() {}

	switch cfg.GuardStore {
	case config.StoreCookie:
		return nil, noop, nil
	case config.StoreMemory:
		return repository.NewMemoryStateStore(), noop, nil
	case config.StoreFile:
		log.Info().Str("path", cfg.StateFile).Msg("Guard state file")
		return repository.NewFileStateStore(cfg.StateFile), noop, nil
	case config.StoreRedis:
		store, closeFn, err := openRedisStore(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return store, closeFn, nil
	case config.StorePostgres:
		store, closeFn, err := openPostgresStore(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return store, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown guard store %q", cfg.GuardStore)
	}
}
