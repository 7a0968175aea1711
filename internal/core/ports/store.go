package ports

import (
	"context"

	"go.trai.ch/protanno/internal/core/domain"
)

// CacheStore persists resolved annotation tables keyed by identifier-set digest.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get returns the entry for key. Returns nil, nil if not found.
	// A stored entry that cannot be decoded or fails validation yields a
	// domain.KindCacheCorruption error.
	Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error)

	// Put merges delta into the entry for key, creating it for set when absent,
	// and returns the merged entry. Puts for the same key are serialized and a
	// put is either stored completely or not at all.
	Put(ctx context.Context, key domain.CacheKey, set domain.IdentifierSet, delta domain.CacheDelta) (*domain.CacheEntry, error)

	// Invalidate discards the entry for key. A missing entry is not an error.
	Invalidate(ctx context.Context, key domain.CacheKey) error

	// Close flushes and releases the store.
	Close() error
}

// StoreOpener opens the configured cache backend for one run.
type StoreOpener interface {
	Open(ctx context.Context, settings domain.CacheSettings) (CacheStore, error)
}
