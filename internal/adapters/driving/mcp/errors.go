// Package mcp provides an MCP (Model Context Protocol) server adapter for Verdict.
// It lets AI assistants request product recommendations and stored analyses.
package mcp

import "errors"

var (
	// ErrMissingRecommendationService is returned when the recommendation service is not provided.
	ErrMissingRecommendationService = errors.New("mcp: recommendation service is required")

	// ErrProductServiceUnavailable is returned by product tools when no product service is wired.
	ErrProductServiceUnavailable = errors.New("mcp: product service is not configured")
)
