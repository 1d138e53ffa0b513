package cursor

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Cursor kept under a key of a Redis server
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(ctx context.Context, addr string, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not reach redis at %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, key), nil
}

func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "clubbot:clublog:cursor"
	}
	return &RedisStore{client: client, key: key}
}

func (store *RedisStore) Load(ctx context.Context) (int64, error) {
	value, err := store.client.Get(ctx, store.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not load cursor %s: %w", store.key, err)
	}
	return value, nil
}

func (store *RedisStore) Save(ctx context.Context, value int64) error {
	if err := store.client.Set(ctx, store.key, value, 0).Err(); err != nil {
		return fmt.Errorf("could not save cursor %s: %w", store.key, err)
	}
	return nil
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}
