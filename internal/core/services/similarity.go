package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
	"github.com/custodia-labs/verdict-cli/internal/metrics"
)

// Similarity search ranking weights. Score is on a 0-100 scale and
// similarity on 0-1; the two are deliberately not normalised.
const (
	searchSimilarityWeight = 0.3
	searchScoreWeight      = 0.7
)

// CalculateSimilarity returns the cosine similarity of a and b over their
// common prefix, clamped to [0, 1]. A zero-norm or empty vector on either
// side yields 0.
func CalculateSimilarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range n {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(0, math.Min(1, sim))
}

// SimilarityQuery describes a similarity search around a base product.
type SimilarityQuery struct {
	Embedding []float64
	Category  domain.Category
	BaseURL   string
	Since     time.Time
	Limit     int
}

// SimilaritySearch ranks stored products against a base embedding.
type SimilaritySearch struct {
	store     driven.ProductStore
	threshold float64
}

// NewSimilaritySearch creates a similarity search over the store.
// Candidates with similarity at or below threshold are excluded.
func NewSimilaritySearch(store driven.ProductStore, threshold float64) *SimilaritySearch {
	return &SimilaritySearch{store: store, threshold: threshold}
}

// FindSimilar returns up to q.Limit stored products from the same category,
// excluding the base URL, ordered by 0.3*similarity + 0.7*score. Ties keep
// the store's score-descending order. A store failure yields no candidates.
func (s *SimilaritySearch) FindSimilar(ctx context.Context, q SimilarityQuery) []domain.Candidate {
	products, err := s.store.FindCandidates(ctx, driven.CandidateQuery{
		Category:   q.Category,
		ExcludeURL: q.BaseURL,
		Since:      q.Since,
	})
	if err != nil {
		logger.Warn("Similarity search failed: %v", err)
		metrics.StoreErrors.WithLabelValues("find_candidates").Inc()
		return nil
	}
	logger.Debug("Similarity search: %d stored products in category %s", len(products), q.Category)

	candidates := make([]domain.Candidate, 0, len(products))
	for i := range products {
		sim := CalculateSimilarity(q.Embedding, products[i].Embedding)
		if sim <= s.threshold {
			continue
		}
		candidates = append(candidates, candidateFromProduct(&products[i], sim, domain.SourceStore))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return searchRankKey(candidates[i]) > searchRankKey(candidates[j])
	})

	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	logger.Debug("Similarity search: %d candidates above threshold %.2f", len(candidates), s.threshold)
	return candidates
}

func searchRankKey(c domain.Candidate) float64 {
	return c.EffectiveSimilarity()*searchSimilarityWeight + float64(c.Score)*searchScoreWeight
}

func candidateFromProduct(p *domain.Product, similarity float64, source domain.CandidateSource) domain.Candidate {
	sim := similarity
	return domain.Candidate{
		URL:        p.URL,
		Title:      p.Title,
		Price:      p.Price,
		Score:      p.Score,
		Similarity: &sim,
		Site:       p.Site,
		Source:     source,
		Category:   p.Category,
		Pros:       p.Pros,
		Cons:       p.Cons,
	}
}
