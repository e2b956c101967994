package driving

import (
	"context"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// RecommendationService is the public entry point for recommendations.
type RecommendationService interface {
	// GetProductRecommendations returns better-scoring alternatives for a
	// product. It never fails: internal errors yield an empty list.
	GetProductRecommendations(ctx context.Context, req domain.RecommendRequest) []domain.Recommendation

	// GetCollaborativeRecommendations returns higher-scoring products from
	// the stored product's category. The product must already be stored.
	GetCollaborativeRecommendations(ctx context.Context, url string) ([]domain.Recommendation, error)

	// StoreProduct derives features, category, site and embedding and
	// upserts the product record.
	StoreProduct(ctx context.Context, input domain.StoreProductInput) (*domain.Product, error)
}
