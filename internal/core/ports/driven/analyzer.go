package driven

import (
	"context"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// Analyzer scores review text. It is treated as a black box.
type Analyzer interface {
	// Analyze extracts aspect sentiments and the overall sentiment distribution.
	Analyze(ctx context.Context, reviews []string, kind domain.ProductType) (*domain.Analysis, error)

	// Score computes the worth-to-buy score on a 0-100 scale.
	Score(ctx context.Context, reviews []string, aspects map[string]float64, kind domain.ProductType) (float64, error)
}
