package mcp

import (
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recommendation computes recommendations.
	Recommendation driving.RecommendationService

	// Product analyses pages and reads stored products.
	Product driving.ProductService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Recommendation == nil {
		return ErrMissingRecommendationService
	}
	// Product is optional; product tools report it as unavailable.
	return nil
}
