package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisInvalidator keeps query results in redis. Failures on any
// operation are logged and swallowed per the Cache contract; a failed read
// is a miss.
type RedisInvalidator struct {
	client *redis.Client
	logger zerolog.Logger
}

type RedisOption func(*RedisInvalidator)

func WithLogger(logger zerolog.Logger) RedisOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

func NewRedisInvalidator(client *redis.Client, options ...RedisOption) *RedisInvalidator {
	invalidator := &RedisInvalidator{
		client: client,
		logger: zerolog.Nop(),
	}

	for _, option := range options {
		option(invalidator)
	}

	return invalidator
}

func (i *RedisInvalidator) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := i.client.Set(ctx, key, value, ttl).Err(); err != nil {
		i.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	return nil
}

func (i *RedisInvalidator) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := i.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			i.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false, nil
	}

	return value, true, nil
}

func (i *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		i.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}

	return nil
}
