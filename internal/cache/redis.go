package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "page:"

// RedisRevalidator implements Revalidator by deleting cached page renders
// from redis. The rendering layer stores pages under "page:<path>", so a
// deleted key forces a re-render on the next fetch.
type RedisRevalidator struct {
	client *redis.Client
}

// RedisOptions holds the redis connection settings.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisRevalidator connects to redis and verifies the connection.
func NewRedisRevalidator(ctx context.Context, opts RedisOptions) (*RedisRevalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisRevalidator{client: client}, nil
}

// Revalidate drops the cached renders for the given page paths.
func (r *RedisRevalidator) Revalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = pageKeyPrefix + p
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached pages: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (r *RedisRevalidator) Close() error {
	return r.client.Close()
}
