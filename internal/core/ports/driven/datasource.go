package driven

import (
	"context"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// DataSource fetches product page data (title, description, price, reviews).
// It is treated as a black box with its own timeouts.
type DataSource interface {
	// Fetch returns the page data. A nil result or one without reviews
	// means no data is available.
	Fetch(ctx context.Context, url string) (*domain.ProductData, error)
}

// CompetitorQuery describes the product competitors are sought for.
type CompetitorQuery struct {
	BaseURL     string
	Title       string
	Description string
	Category    domain.Category
	Site        domain.Site
	Max         int
}

// CompetitorFinder locates alternative product URLs.
type CompetitorFinder interface {
	// FindCompetitors returns up to query.Max alternatives.
	FindCompetitors(ctx context.Context, query CompetitorQuery) ([]domain.CompetitorRef, error)
}
