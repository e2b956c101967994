package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driving"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// Ensure ProductService implements the interface.
var _ driving.ProductService = (*ProductService)(nil)

// Analysis pipeline constants.
const (
	analyzeRecommendationLimit = 3

	prosConsThreshold = 0.1
	maxProsCons       = 3
	minProsCons       = 2
)

// ProductService analyses product pages end to end and exposes the stored
// product corpus.
type ProductService struct {
	source          driven.DataSource
	analyzer        driven.Analyzer
	products        driven.ProductStore
	links           driven.CompetitorLinkStore
	recommendations driving.RecommendationService
}

// NewProductService creates a new product service.
func NewProductService(
	source driven.DataSource,
	analyzer driven.Analyzer,
	products driven.ProductStore,
	links driven.CompetitorLinkStore,
	recommendations driving.RecommendationService,
) *ProductService {
	return &ProductService{
		source:          source,
		analyzer:        analyzer,
		products:        products,
		links:           links,
		recommendations: recommendations,
	}
}

// Analyze fetches the page, analyses its reviews, derives the score,
// pros/cons and verdict text, stores the product and attaches
// recommendations. Recommendations are not filtered by the fresh score.
func (s *ProductService) Analyze(ctx context.Context, url string) (*domain.ProductReport, error) {
	url = NormalizeProductURL(url)
	if url == "" {
		return nil, fmt.Errorf("product url: %w", domain.ErrInvalidInput)
	}
	if s.source == nil || s.analyzer == nil {
		return nil, fmt.Errorf("product analysis: %w", domain.ErrCapabilityUnavailable)
	}

	logger.Section("Analyze")
	logger.Info("Analyzing %s", url)

	data, err := s.source.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching product: %w", err)
	}
	if !data.HasReviews() {
		return nil, fmt.Errorf("no reviews found for %s: %w", url, domain.ErrNoData)
	}

	kind := data.Type
	if kind == "" {
		kind = domain.DetectProductType(url, data.Title, data.Description)
	}

	analysis, err := s.analyzer.Analyze(ctx, data.Reviews, kind)
	if err != nil {
		return nil, fmt.Errorf("analyzing reviews: %w", err)
	}
	if analysis == nil {
		return nil, fmt.Errorf("analyzing reviews: %w", domain.ErrNoData)
	}

	raw, err := s.analyzer.Score(ctx, data.Reviews, analysis.AspectSentiments, kind)
	if err != nil {
		return nil, fmt.Errorf("scoring reviews: %w", err)
	}
	score := int(math.Round(raw))
	pros, cons := SelectProsCons(analysis.AspectSentiments)
	logger.Debug("Analyzed %d reviews: score=%d pros=%d cons=%d", len(data.Reviews), score, len(pros), len(cons))

	input := domain.StoreProductInput{
		URL:         url,
		Title:       data.Title,
		Description: data.Description,
		Price:       data.Price,
		Score:       score,
		Pros:        pros,
		Cons:        cons,
		Analysis:    analysis,
	}

	report := &domain.ProductReport{
		ReviewCount:    len(data.Reviews),
		Verdict:        VoiceVerdict(score, pros, cons, kind),
		Recommendation: RecommendationLabel(score),
		Insights:       Insights(len(data.Reviews), analysis.AspectSentiments, score),
		Meta:           reportMeta(analysis.Meta),
	}
	if s.recommendations == nil {
		report.Product = productFromInput(input)
		report.Recommendations = []domain.Recommendation{}
		return report, nil
	}

	stored, err := s.recommendations.StoreProduct(ctx, input)
	if err != nil {
		logger.Warn("Storing analysed product failed: %v", err)
		report.Product = productFromInput(input)
	} else {
		report.Product = *stored
	}

	report.Recommendations = s.recommendations.GetProductRecommendations(ctx, domain.RecommendRequest{
		ProductURL:  url,
		Title:       data.Title,
		Description: data.Description,
		Limit:       analyzeRecommendationLimit,
	})
	return report, nil
}

// Get retrieves a stored product by URL.
func (s *ProductService) Get(ctx context.Context, url string) (*domain.Product, error) {
	return s.products.Get(ctx, NormalizeProductURL(url))
}

// List returns stored products.
func (s *ProductService) List(ctx context.Context, opts domain.ListOptions) ([]domain.Product, error) {
	return s.products.List(ctx, opts)
}

// Competitors returns competitor links recorded for a base URL.
func (s *ProductService) Competitors(ctx context.Context, url string) ([]domain.CompetitorLink, error) {
	if s.links == nil {
		return nil, fmt.Errorf("competitor links: %w", domain.ErrStoreUnavailable)
	}
	return s.links.ListLinks(ctx, NormalizeProductURL(url))
}

// Remove deletes a stored product.
func (s *ProductService) Remove(ctx context.Context, url string) error {
	return s.products.Delete(ctx, NormalizeProductURL(url))
}

// NormalizeProductURL prefixes https:// when the URL has no http(s) scheme.
func NormalizeProductURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return url
	}
	return "https://" + strings.TrimLeft(url, "/ ")
}

// SelectProsCons picks up to three aspects above +0.1 as pros and up to
// three below -0.1 as cons, then tops each list up to two entries from the
// best and worst ends of the ranking.
func SelectProsCons(aspects map[string]float64) (pros, cons []domain.AspectSentiment) {
	sorted := make([]domain.AspectSentiment, 0, len(aspects))
	for name, v := range aspects {
		sorted = append(sorted, domain.AspectSentiment{Aspect: name, Sentiment: v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Sentiment != sorted[j].Sentiment {
			return sorted[i].Sentiment > sorted[j].Sentiment
		}
		return sorted[i].Aspect < sorted[j].Aspect
	})

	pros = []domain.AspectSentiment{}
	cons = []domain.AspectSentiment{}
	for _, a := range sorted {
		switch {
		case a.Sentiment > prosConsThreshold && len(pros) < maxProsCons:
			pros = append(pros, a)
		case a.Sentiment < -prosConsThreshold && len(cons) < maxProsCons:
			cons = append(cons, a)
		}
	}

	for i := 0; i < len(sorted) && len(pros) < minProsCons; i++ {
		if !containsAspect(pros, sorted[i]) {
			pros = append(pros, sorted[i])
		}
	}
	for i := len(sorted) - 1; i >= 0 && len(cons) < minProsCons; i-- {
		if !containsAspect(cons, sorted[i]) {
			cons = append(cons, sorted[i])
		}
	}
	return pros, cons
}

func containsAspect(items []domain.AspectSentiment, a domain.AspectSentiment) bool {
	for _, it := range items {
		if it == a {
			return true
		}
	}
	return false
}

func productFromInput(in domain.StoreProductInput) domain.Product {
	return domain.Product{
		URL:         in.URL,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Score:       in.Score,
		Pros:        in.Pros,
		Cons:        in.Cons,
		Category:    ClassifyCategory(in.Title, in.Description),
		Site:        domain.SiteFromURL(in.URL),
		Analysis:    in.Analysis,
	}
}
