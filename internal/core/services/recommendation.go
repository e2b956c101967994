package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driving"
	"github.com/custodia-labs/verdict-cli/internal/logger"
	"github.com/custodia-labs/verdict-cli/internal/metrics"
)

// Ensure RecommendationService implements the interface.
var _ driving.RecommendationService = (*RecommendationService)(nil)

// Collaborative recommendation constants.
const (
	collaborativeLimit      = 10
	collaborativeSimilarity = 0.8
)

// RecommendationService computes recommendations. It is constructed once
// at process start and shared by every caller; the store and cache are the
// only shared mutable state.
type RecommendationService struct {
	products    driven.ProductStore
	cache       driven.RecommendationCache
	embedder    driven.EmbeddingService
	features    *FeatureExtractor
	search      *SimilaritySearch
	competitors *CompetitorFetcher
	filter      driven.CandidateFilter
	settings    domain.RecommendationSettings
	now         func() time.Time
}

// NewRecommendationService creates a new recommendation service.
// The features extractor may be nil, in which case the token fallback is used.
func NewRecommendationService(
	products driven.ProductStore,
	cache driven.RecommendationCache,
	embedder driven.EmbeddingService,
	features *FeatureExtractor,
	settings domain.RecommendationSettings,
) *RecommendationService {
	if features == nil {
		features = NewFeatureExtractor(nil)
	}
	if settings.DefaultLimit <= 0 {
		settings.DefaultLimit = domain.DefaultRecommendationLimit
	}
	return &RecommendationService{
		products: products,
		cache:    cache,
		embedder: embedder,
		features: features,
		search:   NewSimilaritySearch(products, settings.SimilarityThreshold),
		settings: settings,
		now:      time.Now,
	}
}

// SetCompetitorFetcher enables fresh competitor lookup when the store
// yields too few matches.
func (s *RecommendationService) SetCompetitorFetcher(f *CompetitorFetcher) {
	s.competitors = f
}

// SetCandidateFilter sets an extra predicate applied before ranking.
func (s *RecommendationService) SetCandidateFilter(f driven.CandidateFilter) {
	s.filter = f
}

// SetClock overrides the clock used for recency windows and timestamps.
func (s *RecommendationService) SetClock(now func() time.Time) {
	s.now = now
}

// GetProductRecommendations returns better-scoring alternatives for a
// product. A cached, unexpired, non-empty result is returned as is.
// Otherwise the result is computed and cached. It never fails: any internal
// error, including a panic, yields an empty list.
func (s *RecommendationService) GetProductRecommendations(
	ctx context.Context, req domain.RecommendRequest,
) (recs []domain.Recommendation) {
	started := time.Now()
	log := logger.With("request_id", uuid.New().String())

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("url", req.ProductURL).Msg("recommendation computation panicked")
			metrics.ObserveRecommendation(metrics.OutcomeFailed, started)
			recs = []domain.Recommendation{}
		}
	}()

	logger.Section("Recommendations")
	limit := req.Limit
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}

	if cached := s.cachedRecommendations(ctx, req.ProductURL, log); len(cached) > 0 {
		log.Debug().Int("count", len(cached)).Msg("serving cached recommendations")
		metrics.ObserveRecommendation(metrics.OutcomeCacheHit, started)
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached
	}

	computed, err := s.compute(ctx, req, limit, log)
	if err != nil {
		log.Warn().Err(err).Str("url", req.ProductURL).Msg("recommendation computation failed")
		metrics.ObserveRecommendation(metrics.OutcomeFailed, started)
		return []domain.Recommendation{}
	}

	if err := s.cache.Put(ctx, req.ProductURL, computed); err != nil {
		log.Warn().Err(err).Msg("caching recommendations failed")
		metrics.StoreErrors.WithLabelValues("cache_put").Inc()
	}

	log.Info().Int("count", len(computed)).Dur("elapsed", time.Since(started)).Msg("recommendations computed")
	metrics.ObserveRecommendation(metrics.OutcomeComputed, started)
	return computed
}

// cachedRecommendations reads the cache. Any failure is a miss.
func (s *RecommendationService) cachedRecommendations(
	ctx context.Context, url string, log zerolog.Logger,
) []domain.Recommendation {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, url, s.settings.CacheExpiry())
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Warn().Err(err).Msg("reading recommendation cache failed")
			metrics.StoreErrors.WithLabelValues("cache_get").Inc()
		}
		return nil
	}
	return cached
}

// compute runs the full pipeline: features, category, embedding, similarity
// search, competitor fetch, ranking and explanation.
func (s *RecommendationService) compute(
	ctx context.Context, req domain.RecommendRequest, limit int, log zerolog.Logger,
) ([]domain.Recommendation, error) {
	if strings.TrimSpace(req.ProductURL) == "" {
		return nil, fmt.Errorf("product url: %w", domain.ErrInvalidInput)
	}

	features := s.features.Extract(ctx, req.Title, req.Description)
	category := ClassifyCategory(req.Title, req.Description)
	site := domain.SiteFromURL(req.ProductURL)
	embedding := s.embed(ctx, features)
	log.Debug().Str("category", category.String()).Str("site", site.String()).Int("features", len(strings.Fields(features))).Msg("base product")

	candidates := s.search.FindSimilar(ctx, SimilarityQuery{
		Embedding: embedding,
		Category:  category,
		BaseURL:   req.ProductURL,
		Since:     s.now().Add(-s.settings.RecencyWindow()),
		Limit:     limit * 2,
	})
	log.Debug().Int("count", len(candidates)).Msg("store matches")

	if len(candidates) < limit && s.competitors != nil {
		results := s.competitors.Fetch(ctx, CompetitorRequest{
			BaseURL:     req.ProductURL,
			Title:       req.Title,
			Description: req.Description,
			Category:    category,
			Site:        site,
		})
		for _, r := range results {
			c, ok := r.Candidate()
			if !ok {
				continue
			}
			c.Category = category
			candidates = append(candidates, c)
		}
		log.Debug().Int("competitors", len(results)).Int("count", len(candidates)).Msg("merged competitors")
	}

	base := s.baseProduct(ctx, req, category)
	ranked := RankCandidates(candidates, RankOptions{
		BaseURL:        req.ProductURL,
		CurrentScore:   req.CurrentScore,
		MinImprovement: s.settings.MinScoreImprovement,
		Limit:          limit,
		Filter:         s.filter,
	})

	recs := make([]domain.Recommendation, 0, len(ranked))
	for _, c := range ranked {
		exp := ExplainRecommendation(base, c, c.EffectiveSimilarity())
		recs = append(recs, FormatRecommendation(c, &exp))
	}
	return recs, nil
}

// embed returns the embedding for features, or a zero vector if the
// embedding service fails.
func (s *RecommendationService) embed(ctx context.Context, features string) []float64 {
	vec, err := s.embedder.Embed(ctx, features)
	if err != nil {
		logger.Warn("Embedding failed, using zero vector: %v", err)
		return make([]float64, s.embedder.Dimensions())
	}
	return vec
}

// baseProduct gathers the facts explanations compare against. The stored
// record supplies price, pros and cons; the current score, when given,
// overrides the stored score.
func (s *RecommendationService) baseProduct(
	ctx context.Context, req domain.RecommendRequest, category domain.Category,
) domain.BaseProduct {
	base := domain.BaseProduct{URL: req.ProductURL, Category: category}

	stored, err := s.products.Get(ctx, req.ProductURL)
	switch {
	case err == nil:
		base.Score = stored.Score
		base.Price = stored.Price
		base.Pros = stored.Pros
		base.Cons = stored.Cons
	case !errors.Is(err, domain.ErrNotFound):
		logger.Warn("Loading base product failed: %v", err)
		metrics.StoreErrors.WithLabelValues("get_product").Inc()
	}

	if req.CurrentScore != nil {
		base.Score = *req.CurrentScore
	}
	return base
}

// StoreProduct derives features, category, site and embedding and upserts
// the product record.
func (s *RecommendationService) StoreProduct(
	ctx context.Context, input domain.StoreProductInput,
) (*domain.Product, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, fmt.Errorf("product url: %w", domain.ErrInvalidInput)
	}

	features := s.features.Extract(ctx, input.Title, input.Description)
	product := domain.Product{
		URL:         input.URL,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Score:       input.Score,
		Pros:        input.Pros,
		Cons:        input.Cons,
		Category:    ClassifyCategory(input.Title, input.Description),
		Site:        domain.SiteFromURL(input.URL),
		Embedding:   s.embed(ctx, features),
		Analysis:    input.Analysis,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.products.Upsert(ctx, product); err != nil {
		metrics.StoreErrors.WithLabelValues("upsert_product").Inc()
		return nil, fmt.Errorf("storing product: %w", err)
	}
	logger.Debug("Stored product %s (category=%s, score=%d)", product.URL, product.Category, product.Score)
	return &product, nil
}

// GetCollaborativeRecommendations returns up to ten stored products from
// the base product's category that score strictly higher, best first.
func (s *RecommendationService) GetCollaborativeRecommendations(
	ctx context.Context, url string,
) ([]domain.Recommendation, error) {
	current, err := s.products.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("loading product: %w", err)
	}

	rows, err := s.products.TopByCategory(ctx, current.Category, current.Score, url, collaborativeLimit)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("top_by_category").Inc()
		return nil, fmt.Errorf("listing category: %w", err)
	}

	base := domain.BaseProduct{
		URL:      current.URL,
		Score:    current.Score,
		Category: current.Category,
		Price:    current.Price,
		Pros:     current.Pros,
		Cons:     current.Cons,
	}

	recs := make([]domain.Recommendation, 0, len(rows))
	for i := range rows {
		sim := collaborativeSimilarity
		if len(current.Embedding) > 0 && len(rows[i].Embedding) > 0 {
			sim = CalculateSimilarity(current.Embedding, rows[i].Embedding)
		}
		c := candidateFromProduct(&rows[i], sim, domain.SourceCollaborative)
		exp := ExplainRecommendation(base, c, sim)
		recs = append(recs, FormatRecommendation(c, &exp))
	}
	return recs, nil
}
