// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ProductStore: Product record persistence (the recommendation corpus)
//   - RecommendationCache: Time-boxed recommendation results
//   - EmbeddingService: Feature string to fixed-length vector
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompetitorLinkStore: Remembered competitor pairings. Without it nothing is recorded.
//   - CompetitorFinder, DataSource, Analyzer: Fresh competitor lookup. Without them
//     recommendations come from the store only.
//   - PhraseTagger: NLP tagging. Without it feature extraction uses the token fallback.
//   - CandidateFilter: Extra candidate predicate applied before ranking.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
