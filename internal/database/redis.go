package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/repository"
)

// openRedisStore connects to REDIS_URL and wraps the client as a guard store.
// Guard keys are written without TTL, so an eviction policy other than
// noeviction is reported: it would silently re-open the submission window.
func openRedisStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repository.RedisStateStore, func(), error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = applicationName

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	if policy, err := rdb.ConfigGet(ctx, "maxmemory-policy").Result(); err == nil {
		if p := policy["maxmemory-policy"]; p != "" && p != "noeviction" {
			log.Warn().Str("policy", p).Msg("Redis may evict guard keys")
		}
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Guard store on Redis")

	return repository.NewRedisStateStore(rdb), func() { _ = rdb.Close() }, nil
}
