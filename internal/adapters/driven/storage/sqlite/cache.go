package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// recommendationCache implements driven.RecommendationCache.
type recommendationCache struct {
	store *Store
}

var _ driven.RecommendationCache = (*recommendationCache)(nil)

// Get returns the cached list if it was stored less than maxAge ago.
func (c *recommendationCache) Get(
	ctx context.Context, baseURL string, maxAge time.Duration,
) ([]domain.Recommendation, error) {
	var payload string
	var cachedAt int64
	err := c.store.db.QueryRowContext(ctx, `
		SELECT recommendations, cached_at FROM recommendation_cache WHERE product_url = ?
	`, baseURL).Scan(&payload, &cachedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("reading cached recommendations: %w", err)
	}

	if c.store.now().Sub(fromUnix(cachedAt)) >= maxAge {
		return nil, domain.ErrCacheMiss
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(payload), &recs); err != nil {
		return nil, fmt.Errorf("unmarshalling cached recommendations: %w", err)
	}
	return recs, nil
}

// Put stores the list, replacing any previous entry.
func (c *recommendationCache) Put(ctx context.Context, baseURL string, recs []domain.Recommendation) error {
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshalling recommendations: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO recommendation_cache (product_url, recommendations, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(product_url) DO UPDATE SET
			recommendations = excluded.recommendations,
			cached_at = excluded.cached_at
	`, baseURL, string(payload), toUnix(c.store.now()))
	if err != nil {
		return fmt.Errorf("caching recommendations: %w", err)
	}
	return nil
}
