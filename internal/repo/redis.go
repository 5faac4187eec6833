package repo

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisMaxAttempts = 5

// redisWatcher é o subconjunto de *redis.Client usado pelo backend.
type redisWatcher interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisBackend guarda cada coleção em uma chave string do Redis.
// Mutate usa WATCH/MULTI (concorrência otimista).
type RedisBackend struct {
	client redisWatcher
	prefix string
}

// NewRedisBackend cria backend com prefixo opcional de chaves.
func NewRedisBackend(client redisWatcher, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + key
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *RedisBackend) Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	fullKey := b.key(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		err := b.client.Watch(ctx, txf, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
