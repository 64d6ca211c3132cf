package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmaguard-server/internal/domain"
)

const redisKeyPrefix = "pharmaguard:explanation:"

// RedisStore implements domain.ExplanationStore on Redis, for deployments
// that already run a shared Redis. Selected by configuration; entries
// carry no TTL here - age/capacity eviction is the store operator's
// policy, never a correctness concern.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed explanation store.
func NewRedisStore(cfg domain.CacheConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.PoolTimeout = cfg.PoolTimeout
	opts.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get returns the entry for key, or (nil, nil) on a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	entry := &domain.CacheEntry{}
	if err := json.Unmarshal([]byte(val), entry); err != nil {
		return nil, fmt.Errorf("corrupted cache entry for key %s: %w", key, err)
	}
	return entry, nil
}

// Put appends an entry with the same idempotence/conflict semantics as
// the SQLite store. SetNX keeps the first writer's entry under races.
func (s *RedisStore) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	existing, err := s.Get(ctx, entry.Key)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Text == entry.Text {
			return nil
		}
		return fmt.Errorf("key %s: %w", entry.Key, domain.ErrCacheKeyConflict)
	}

	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := s.client.SetNX(ctx, redisKeyPrefix+entry.Key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
