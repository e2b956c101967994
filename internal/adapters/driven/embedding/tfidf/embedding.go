// Package tfidf provides a local embedding service for product feature strings.
//
// The primary tier weights unigrams and bigrams by TF-IDF over the single
// input document and projects the weights onto a fixed number of dimensions
// with signed feature hashing. Inputs the primary tier cannot handle fall
// back to a word-frequency vector. Every result has exactly Dimensions()
// finite entries.
package tfidf

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
	"github.com/custodia-labs/verdict-cli/internal/metrics"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 100
	ModelName         = "tfidf-hash"

	maxFeatures      = 1000
	maxFallbackTerms = 100
	projectionSeed   = 42
)

// wordToken matches runs of two or more word characters.
var wordToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// EmbeddingService embeds text locally. It holds no mutable state and is
// safe for concurrent use.
type EmbeddingService struct {
	dimensions int
}

// New creates an embedding service producing vectors of the given size.
// A non-positive size uses DefaultDimensions.
func New(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the embedding for text. It never fails.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float64, error) {
	return s.CreateTextEmbedding(text), nil
}

// CreateTextEmbedding returns the TF-IDF embedding of text, or the
// word-frequency fallback when the weighting cannot be computed.
func (s *EmbeddingService) CreateTextEmbedding(text string) []float64 {
	vec, err := s.weighted(text)
	if err != nil {
		if strings.TrimSpace(text) != "" {
			logger.Debug("TF-IDF embedding failed, using frequency fallback: %v", err)
		}
		metrics.EmbeddingFallbacks.Inc()
		return s.frequency(text)
	}
	return vec
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding strategy.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// weighted computes the primary tier. Over a single document every term has
// the same smoothed idf of 1, so weights are term counts scaled to unit length.
func (s *EmbeddingService) weighted(text string) ([]float64, error) {
	unigrams := tokenize(text)
	distinct := make(map[string]struct{}, len(unigrams))
	for _, u := range unigrams {
		distinct[u] = struct{}{}
	}
	if len(distinct) < 2 {
		return nil, fmt.Errorf("%d distinct terms: %w", len(distinct), domain.ErrDegenerateInput)
	}

	counts := make(map[string]int, len(unigrams)*2)
	for i, u := range unigrams {
		counts[u]++
		if i > 0 {
			counts[unigrams[i-1]+" "+u]++
		}
	}

	vocab := topFeatures(counts, maxFeatures)
	weights := make([]float64, len(vocab))
	var norm float64
	for i, term := range vocab {
		w := float64(counts[term])
		weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range weights {
		weights[i] /= norm
	}

	var vec []float64
	if len(vocab) > s.dimensions {
		vec = s.project(vocab, weights)
	} else {
		vec = make([]float64, s.dimensions)
		copy(vec, weights)
	}

	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite weight: %w", domain.ErrDegenerateInput)
		}
	}
	return vec, nil
}

// project reduces term weights to s.dimensions with a signed hashing
// projection. The mapping of a term depends only on the term and the seed.
func (s *EmbeddingService) project(vocab []string, weights []float64) []float64 {
	vec := make([]float64, s.dimensions)
	for i, term := range vocab {
		bucket, sign := hashTerm(term, s.dimensions)
		vec[bucket] += sign * weights[i]
	}
	return vec
}

// frequency counts whitespace-separated words over up to 100 distinct terms
// in lexicographic order, zero-padded to s.dimensions.
func (s *EmbeddingService) frequency(text string) []float64 {
	counts := make(map[string]int)
	for _, w := range strings.Fields(text) {
		counts[w]++
	}

	terms := make([]string, 0, len(counts))
	for w := range counts {
		terms = append(terms, w)
	}
	sort.Strings(terms)
	if len(terms) > maxFallbackTerms {
		terms = terms[:maxFallbackTerms]
	}

	vec := make([]float64, s.dimensions)
	for i, term := range terms {
		if i >= len(vec) {
			break
		}
		vec[i] = float64(counts[term])
	}
	return vec
}

// tokenize lowercases text and returns word tokens that are not stop words.
func tokenize(text string) []string {
	raw := wordToken.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, stop := englishStopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// topFeatures keeps the n most frequent terms (ties by name) and returns
// them sorted by name.
func topFeatures(counts map[string]int, n int) []string {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	if len(terms) > n {
		sort.Slice(terms, func(i, j int) bool {
			if counts[terms[i]] != counts[terms[j]] {
				return counts[terms[i]] > counts[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:n]
	}
	sort.Strings(terms)
	return terms
}

func hashTerm(term string, dims int) (int, float64) {
	h := fnv.New64a()
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], projectionSeed)
	_, _ = h.Write(seed[:])
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()

	sign := 1.0
	if sum>>63 == 1 {
		sign = -1.0
	}
	return int(sum % uint64(dims)), sign
}
