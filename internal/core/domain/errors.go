package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoData indicates a data source returned no usable reviews.
	ErrNoData = errors.New("no data available")

	// ErrCacheMiss indicates no unexpired cache entry exists for a key.
	// Expired entries are reported as misses, never returned.
	ErrCacheMiss = errors.New("cache miss")

	// ErrStoreUnavailable indicates the product store could not be reached.
	ErrStoreUnavailable = errors.New("product store unavailable")

	// ErrCapabilityUnavailable indicates an optional capability (such as the
	// NLP tagger) was not detected at startup.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrDegenerateInput indicates input too small for a computation,
	// for example a TF-IDF weighting over fewer than two distinct terms.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrCircuitOpen indicates a remote collaborator is temporarily
	// rejected after repeated failures.
	ErrCircuitOpen = errors.New("circuit open")

	// ErrUnknownSetting indicates an unrecognised settings key.
	ErrUnknownSetting = errors.New("unknown setting")
)
