// Package ai provides factory functions for creating the embedding and NLP
// adapters, including the startup capability check for the NLP tier.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/embedding/tfidf"
	ollamanlp "github.com/custodia-labs/verdict-cli/internal/adapters/driven/nlp/ollama"
	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	PhraseTagger     driven.PhraseTagger // nil when the NLP tier is unavailable.
	NLP              domain.Capability
	Warnings         []string // Non-fatal issues that caused fallback.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.PhraseTagger != nil {
		r.PhraseTagger.Close()
	}
}

// Initialise builds the embedding service and decides the NLP capability
// once. A configured but unreachable tagger is reported as a warning and the
// token fallback is used.
func Initialise(ctx context.Context, settings domain.AppSettings) *InitResult {
	result := &InitResult{
		EmbeddingService: tfidf.New(settings.Recommendation.EmbeddingDimensions),
		NLP:              domain.Unavailable("nlp", "no provider configured"),
	}

	tagger, err := CreateAndValidatePhraseTagger(ctx, &settings.NLP)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
		result.NLP = domain.Unavailable("nlp", err.Error())
	case tagger != nil:
		result.PhraseTagger = tagger
		result.NLP = domain.Available("nlp")
	}
	return result
}

// CreateAndValidatePhraseTagger creates a tagger and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidatePhraseTagger(ctx context.Context, settings *domain.NLPSettings) (driven.PhraseTagger, error) {
	tagger, err := CreatePhraseTagger(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'verdict settings set nlp.provider <provider>' to fix",
			domain.ErrCapabilityUnavailable, err)
	}
	if tagger == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := tagger.Ping(pingCtx); err != nil {
		tagger.Close()
		return nil, fmt.Errorf("%w: nlp service unreachable (%w)", domain.ErrCapabilityUnavailable, err)
	}
	return tagger, nil
}

// CreatePhraseTagger creates the tagger for the configured provider.
// Returns nil if the provider is not configured.
func CreatePhraseTagger(settings *domain.NLPSettings) (driven.PhraseTagger, error) {
	if settings == nil || settings.Provider == domain.NLPProviderNone {
		return nil, nil
	}

	switch settings.Provider {
	case domain.NLPProviderOllama:
		return ollamanlp.New(ollamanlp.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported nlp provider: %s", settings.Provider)
	}
}
