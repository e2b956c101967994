package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure RecommendationCache implements the interface.
var _ driven.RecommendationCache = (*RecommendationCache)(nil)

type cacheEntry struct {
	recs     []domain.Recommendation
	cachedAt time.Time
}

// RecommendationCache is an in-memory implementation of driven.RecommendationCache.
type RecommendationCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewRecommendationCache creates a new in-memory recommendation cache.
func NewRecommendationCache() *RecommendationCache {
	return &RecommendationCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// SetClock overrides the clock used for entry age.
func (c *RecommendationCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached list if it is younger than maxAge.
func (c *RecommendationCache) Get(_ context.Context, baseURL string, maxAge time.Duration) ([]domain.Recommendation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[baseURL]
	if !ok || c.now().Sub(entry.cachedAt) >= maxAge {
		return nil, domain.ErrCacheMiss
	}
	return slices.Clone(entry.recs), nil
}

// Put stores the list, replacing any previous entry.
func (c *RecommendationCache) Put(_ context.Context, baseURL string, recs []domain.Recommendation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[baseURL] = cacheEntry{recs: slices.Clone(recs), cachedAt: c.now()}
	return nil
}
