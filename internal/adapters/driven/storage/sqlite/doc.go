// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements the product store interfaces
// through a single database connection:
//
//   - ProductStore: analysed products with embeddings
//   - CompetitorLinkStore: competitors found per base product
//   - RecommendationCache: computed recommendation lists with their timestamps
//
// Filtered product queries are built with squirrel; JSON columns use goccy/go-json.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Timestamps are stored as UTC Unix nanoseconds.
//
// # Data Location
//
// By default, the database is stored at ~/.verdict/data/verdict.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
