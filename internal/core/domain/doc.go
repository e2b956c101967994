// Package domain defines the core business entities for verdict.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product: An analysed product page, the corpus recommendations are drawn from
//   - Recommendation: A better-scoring alternative with its explanation
//   - Candidate: A product under consideration during ranking
//   - CompetitorLink: A remembered (base, competitor) pairing
//   - Analysis: Output of the review analyser
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
