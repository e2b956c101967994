package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// Feature extraction limits.
const (
	maxTaggedFeatures  = 50
	maxTokenFeatures   = 100
	maxNounChunkWords  = 3
	minFeatureTokenLen = 3
)

var (
	// nonFeatureChars matches everything except letters, digits, underscore,
	// whitespace and hyphen.
	nonFeatureChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// featureStopWords are dropped by the token fallback.
var featureStopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"been": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"must": {},
}

// taggedEntityLabels are the entity labels kept by the NLP tier.
var taggedEntityLabels = map[string]struct{}{
	driven.EntityProduct:      {},
	driven.EntityOrganization: {},
	driven.EntityMoney:        {},
}

// FeatureExtractor turns a product title and description into a normalised
// string of salient terms.
//
// It has two tiers. The NLP tier runs only when the tagger capability was
// detected at startup; any tagger error or empty result falls through to
// the token tier, which is always available and never fails.
type FeatureExtractor struct {
	tagger     driven.PhraseTagger
	capability domain.Capability
}

// NewFeatureExtractor creates an extractor. The tagger may be nil.
func NewFeatureExtractor(tagger driven.PhraseTagger) *FeatureExtractor {
	capability := domain.Unavailable("nlp", "no tagger configured")
	if tagger != nil {
		capability = domain.Available("nlp")
	}
	return &FeatureExtractor{tagger: tagger, capability: capability}
}

// Capability returns the NLP capability decided at construction.
func (e *FeatureExtractor) Capability() domain.Capability {
	return e.capability
}

// Extract returns the feature string for a product.
func (e *FeatureExtractor) Extract(ctx context.Context, title, description string) string {
	text := NormalizeFeatureText(title + " " + description)

	if e.capability.IsAvailable() {
		features, err := e.tagged(ctx, text)
		if err == nil && len(features) > 0 {
			return strings.Join(features, " ")
		}
		if err != nil {
			logger.Debug("NLP feature extraction failed, using token fallback: %v", err)
		}
	}

	return strings.Join(tokenFeatures(text), " ")
}

// NormalizeFeatureText lowercases text, replaces every character that is
// not a word character, whitespace or hyphen with a space and collapses
// whitespace runs.
func NormalizeFeatureText(text string) string {
	text = nonFeatureChars.ReplaceAllString(strings.ToLower(text), " ")
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
}

// tagged runs the NLP tier: short noun chunks, adjective-noun bigrams and
// selected entities, capped at maxTaggedFeatures.
func (e *FeatureExtractor) tagged(ctx context.Context, text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	tagged, err := e.tagger.Tag(ctx, text)
	if err != nil {
		return nil, err
	}
	if tagged == nil {
		return nil, nil
	}

	var features []string //nolint:prealloc // size unknown until tagged output is walked

	for _, chunk := range tagged.NounChunks {
		chunk = strings.ToLower(strings.TrimSpace(chunk))
		if chunk == "" || len(strings.Fields(chunk)) > maxNounChunkWords {
			continue
		}
		features = append(features, chunk)
	}

	tokens := make([]driven.TaggedToken, 0, len(tagged.Tokens))
	for _, tok := range tagged.Tokens {
		if tok.POS == "PUNCT" || tok.POS == "SPACE" || strings.TrimSpace(tok.Text) == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].POS == "ADJ" && tokens[i+1].POS == "NOUN" {
			features = append(features, strings.ToLower(tokens[i].Text+" "+tokens[i+1].Text))
		}
	}

	for _, ent := range tagged.Entities {
		if _, ok := taggedEntityLabels[ent.Label]; !ok {
			continue
		}
		if name := strings.ToLower(strings.TrimSpace(ent.Text)); name != "" {
			features = append(features, name)
		}
	}

	if len(features) > maxTaggedFeatures {
		features = features[:maxTaggedFeatures]
	}
	return features, nil
}

// tokenFeatures is the fallback tier: whitespace tokens longer than two
// characters that are not stop words, first maxTokenFeatures in order.
func tokenFeatures(text string) []string {
	features := make([]string, 0, maxTokenFeatures)
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) < minFeatureTokenLen {
			continue
		}
		if _, stop := featureStopWords[word]; stop {
			continue
		}
		features = append(features, word)
		if len(features) == maxTokenFeatures {
			break
		}
	}
	return features
}
