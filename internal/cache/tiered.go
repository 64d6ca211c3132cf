package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pharmaguard-server/internal/domain"
)

// TieredStore wraps a durable ExplanationStore with an in-process LRU
// read tier. Entries are immutable once written, so the memory tier
// never needs invalidation.
type TieredStore struct {
	memory *lru.Cache[string, *domain.CacheEntry]
	store  domain.ExplanationStore
}

// NewTieredStore wraps store with an LRU of the given size.
func NewTieredStore(store domain.ExplanationStore, size int) (*TieredStore, error) {
	memory, err := lru.New[string, *domain.CacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &TieredStore{memory: memory, store: store}, nil
}

// Get checks the memory tier first, then falls through to the durable
// store and populates the memory tier on a hit.
func (s *TieredStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	if entry, ok := s.memory.Get(key); ok {
		return entry, nil
	}

	entry, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		s.memory.Add(key, entry)
	}
	return entry, nil
}

// Put writes through to the durable store before populating the memory
// tier, so a cached entry is always durably recorded first.
func (s *TieredStore) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if err := s.store.Put(ctx, entry); err != nil {
		return err
	}
	s.memory.Add(entry.Key, entry)
	return nil
}

// Close closes the durable store.
func (s *TieredStore) Close() error {
	s.memory.Purge()
	return s.store.Close()
}
