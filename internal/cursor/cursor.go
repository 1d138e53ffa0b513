// Package cursor persists the timestamp of the last club log entry that
// has been processed, so that restarts do not repeat announcements.
package cursor

import (
	"context"
	"fmt"
	"sync"
)

// Store of a single integer cursor. Load returns 0 when nothing was saved yet
type Store interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, value int64) error
}

type Config struct {
	Backend   string // file, sqlite, redis or memory
	Path      string
	RedisAddr string
	Key       string
}

// Open the store selected by the configuration
func Open(ctx context.Context, config Config) (Store, error) {
	switch config.Backend {
	case "", "file":
		return NewFileStore(config.Path), nil
	case "sqlite":
		return OpenSqliteStore(ctx, config.Path, config.Key)
	case "redis":
		return NewRedisStore(ctx, config.RedisAddr, config.Key)
	case "memory":
		return &MemoryStore{}, nil
	default:
		return nil, fmt.Errorf("cursor backend %q is not supported", config.Backend)
	}
}

type MemoryStore struct {
	mu    sync.Mutex
	value int64
}

func (store *MemoryStore) Load(ctx context.Context) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.value, nil
}

func (store *MemoryStore) Save(ctx context.Context, value int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.value = value
	return nil
}
