package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// CandidateQuery selects stored products eligible for similarity search.
type CandidateQuery struct {
	// Category restricts results to one category.
	Category domain.Category

	// ExcludeURL is omitted from the results (the base product).
	ExcludeURL string

	// Since keeps only products stored after this instant. Zero means no limit.
	Since time.Time
}

// ProductStore persists analysed products keyed by URL.
type ProductStore interface {
	// Upsert inserts or replaces the product with the same URL.
	// Repeating the call with identical input leaves one row.
	Upsert(ctx context.Context, product domain.Product) error

	// Get retrieves a product by URL.
	// Returns domain.ErrNotFound if no product exists.
	Get(ctx context.Context, url string) (*domain.Product, error)

	// List returns stored products ordered by score descending.
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Product, error)

	// FindCandidates returns products matching the query ordered by score descending.
	FindCandidates(ctx context.Context, query CandidateQuery) ([]domain.Product, error)

	// TopByCategory returns up to limit products in the category scoring
	// strictly above minScore, excluding excludeURL, ordered by score descending.
	TopByCategory(ctx context.Context, category domain.Category, minScore int, excludeURL string, limit int) ([]domain.Product, error)

	// Count returns the number of stored products.
	Count(ctx context.Context) (int, error)

	// Delete removes a product by URL.
	Delete(ctx context.Context, url string) error
}

// CompetitorLinkStore remembers competitors found for base products.
type CompetitorLinkStore interface {
	// SaveLink inserts or replaces the link for the (base, competitor) pair.
	SaveLink(ctx context.Context, link domain.CompetitorLink) error

	// ListLinks returns links for a base URL ordered by similarity descending.
	ListLinks(ctx context.Context, baseURL string) ([]domain.CompetitorLink, error)
}

// RecommendationCache stores computed recommendation lists keyed by base URL.
type RecommendationCache interface {
	// Get returns the cached list if it was stored less than maxAge ago.
	// Returns domain.ErrCacheMiss when absent or expired.
	Get(ctx context.Context, baseURL string, maxAge time.Duration) ([]domain.Recommendation, error)

	// Put stores the list, replacing any previous entry.
	Put(ctx context.Context, baseURL string, recs []domain.Recommendation) error
}
