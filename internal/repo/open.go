package repo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sfdportal/portal/internal/config"
	"github.com/sfdportal/portal/internal/db"
)

// Resources reúne o Store aberto e as conexões que o sustentam.
// Redis fica disponível sempre que REDIS_URL estiver definido, mesmo com outro driver,
// para uso como cache.
type Resources struct {
	Store   *Store
	Redis   *redis.Client
	closers []func()
}

// Close libera conexões na ordem inversa de abertura.
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Open escolhe o backend conforme STORE_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (*Resources, error) {
	res := &Resources{}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		client := redis.NewClient(opts)
		res.closers = append(res.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			if cfg.StoreDriver == config.StoreRedis {
				res.Close()
				return nil, fmt.Errorf("redis ping: %w", err)
			}
			log.Warn().Err(err).Msg("redis indisponível; cache desativado")
		} else {
			res.Redis = client
		}
	}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("db: %w", err)
		}
		res.closers = append(res.closers, pool.Close)
		backend, err := NewPostgresBackend(ctx, pool)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("postgres backend: %w", err)
		}
		res.Store = NewStore(backend)
	case config.StoreRedis:
		res.Store = NewStore(NewRedisBackend(res.Redis, cfg.RedisPrefix))
	default:
		log.Warn().Msg("STORE_DRIVER=memory: dados não sobrevivem a reinícios")
		res.Store = NewStore(NewMemoryBackend())
	}

	log.Info().Str("driver", cfg.StoreDriver).Msg("armazenamento pronto")
	return res, nil
}
