// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService converts a feature string into a fixed-length vector.
//
// Implementations must be total: any internal failure is resolved by a
// fallback inside the implementation, so a returned error indicates a
// broken adapter rather than bad input.
type EmbeddingService interface {
	// Embed returns a vector of exactly Dimensions() finite entries.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding strategy.
	ModelName() string
}
