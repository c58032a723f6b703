package state

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/storepilot/internal/store"
)

// CachedLoader memoises loaded documents per merchant and revalidates them
// against the store revision on every call. Callers always receive a deep
// copy.
type CachedLoader struct {
	inner Source
	repo  store.Repository
	cache *lru.Cache[string, StoreState]
}

var _ Source = (*CachedLoader)(nil)

// NewCachedLoader wraps inner with an LRU of size entries.
func NewCachedLoader(inner Source, repo store.Repository, size int) (*CachedLoader, error) {
	cache, err := lru.New[string, StoreState](size)
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}
	return &CachedLoader{inner: inner, repo: repo, cache: cache}, nil
}

// Load returns the cached document when its revision still matches the
// store, otherwise loads and caches a fresh one.
func (c *CachedLoader) Load(ctx context.Context, merchantID string) (StoreState, error) {
	if cached, ok := c.cache.Get(merchantID); ok {
		rev, err := c.repo.Revision(ctx, merchantID)
		if err != nil {
			return StoreState{}, &DataAccessError{MerchantID: merchantID, Op: "revision", Err: err}
		}
		if rev == cached.Meta.Revision {
			slog.Debug("state cache hit", "merchant_id", merchantID, "revision", rev)
			return Clone(cached), nil
		}
	}

	st, err := c.inner.Load(ctx, merchantID)
	if err != nil {
		c.cache.Remove(merchantID)
		return StoreState{}, err
	}
	c.cache.Add(merchantID, Clone(st))
	return st, nil
}

// Invalidate drops merchantID from the cache.
func (c *CachedLoader) Invalidate(merchantID string) {
	c.cache.Remove(merchantID)
}

// Len reports the number of cached merchants.
func (c *CachedLoader) Len() int {
	return c.cache.Len()
}
