package driving

import (
	"context"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// ProductService analyses product pages and exposes the stored corpus.
type ProductService interface {
	// Analyze fetches, analyses, scores and stores a product page, then
	// attaches recommendations.
	Analyze(ctx context.Context, url string) (*domain.ProductReport, error)

	// Get retrieves a stored product by URL.
	Get(ctx context.Context, url string) (*domain.Product, error)

	// List returns stored products.
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Product, error)

	// Competitors returns competitor links recorded for a base URL.
	Competitors(ctx context.Context, url string) ([]domain.CompetitorLink, error)

	// Remove deletes a stored product.
	Remove(ctx context.Context, url string) error
}
