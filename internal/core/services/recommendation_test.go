package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

const baseURL = "https://www.amazon.in/dp/BASE"

type recommenderFixture struct {
	svc      *RecommendationService
	products *memory.ProductStore
	cache    *memory.RecommendationCache
	clock    *fakeClock
	embedder *mockEmbeddingService
}

func newRecommenderFixture(t *testing.T) *recommenderFixture {
	t.Helper()

	clock := &fakeClock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	products := memory.NewProductStore()
	products.SetClock(clock.Now)
	cache := memory.NewRecommendationCache()
	cache.SetClock(clock.Now)
	embedder := &mockEmbeddingService{vector: []float64{1, 0}}

	settings := domain.DefaultAppSettings().Recommendation
	settings.RecencyDays = 30

	svc := NewRecommendationService(products, cache, embedder, nil, settings)
	svc.SetClock(clock.Now)

	return &recommenderFixture{svc: svc, products: products, cache: cache, clock: clock, embedder: embedder}
}

// vectorWithSimilarity returns a unit vector whose cosine with (1, 0) is sim.
func vectorWithSimilarity(sim float64) []float64 {
	return []float64{sim, math.Sqrt(1 - sim*sim)}
}

func (f *recommenderFixture) addProduct(t *testing.T, url string, score int, sim float64) {
	t.Helper()
	require.NoError(t, f.products.Upsert(context.Background(), domain.Product{
		URL:       url,
		Title:     "Phone " + url,
		Score:     score,
		Category:  domain.CategoryElectronics,
		Site:      domain.SiteFromURL(url),
		Embedding: vectorWithSimilarity(sim),
		CreatedAt: f.clock.Now(),
	}))
}

func phoneRequest(current *int) domain.RecommendRequest {
	return domain.RecommendRequest{
		ProductURL:   baseURL,
		Title:        "Phone X",
		Description:  "budget smartphone",
		CurrentScore: current,
	}
}

func TestGetProductRecommendations_ScoreMarginExample(t *testing.T) {
	f := newRecommenderFixture(t)
	f.addProduct(t, "https://shop.example/A", 70, 0.9)
	f.addProduct(t, "https://shop.example/B", 52, 0.95)

	recs := f.svc.GetProductRecommendations(context.Background(), phoneRequest(ptrInt(50)))

	require.Len(t, recs, 1)
	assert.Equal(t, "https://shop.example/A", recs[0].URL)
	assert.InDelta(t, 0.9, recs[0].Similarity, 1e-9)
	require.NotNil(t, recs[0].Explanation)
	assert.Equal(t, 20, recs[0].Explanation.ScoreDifference)
	assert.Equal(t, "Similar product with 70% score", recs[0].Reason)
}

func TestGetProductRecommendations_NeverBelowMargin(t *testing.T) {
	f := newRecommenderFixture(t)
	for i, score := range []int{40, 54, 55, 56, 90} {
		f.addProduct(t, "https://shop.example/p"+string(rune('a'+i)), score, 0.8)
	}

	recs := f.svc.GetProductRecommendations(context.Background(), phoneRequest(ptrInt(50)))

	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Score, 55)
	}
}

func TestGetProductRecommendations_CompetitorFallback(t *testing.T) {
	f := newRecommenderFixture(t)
	finder := &mockCompetitorFinder{refs: []domain.CompetitorRef{
		{URL: "https://www.flipkart.com/p/itm1", Title: "Rival", Site: domain.SiteFlipkart},
	}}
	source := &mockDataSource{errs: map[string]error{"https://www.flipkart.com/p/itm1": errors.New("captcha")}}
	f.svc.SetCompetitorFetcher(NewCompetitorFetcher(finder, source, &mockAnalyzer{}, 10, 1))

	recs := f.svc.GetProductRecommendations(context.Background(), phoneRequest(nil))

	require.Len(t, recs, 1)
	assert.Equal(t, "https://www.flipkart.com/p/itm1", recs[0].URL)
	assert.Equal(t, 60, recs[0].Score)
	assert.InDelta(t, 0.6, recs[0].Similarity, 1e-9)
	assert.Equal(t, domain.SiteFlipkart, recs[0].Site)

	require.Len(t, finder.queries, 1)
	assert.Equal(t, domain.CategoryElectronics, finder.queries[0].Category)
	assert.Equal(t, domain.SiteAmazon, finder.queries[0].Site)
}

func TestGetProductRecommendations_CompetitorsOnlyWhenShort(t *testing.T) {
	f := newRecommenderFixture(t)
	for i := range 3 {
		f.addProduct(t, "https://shop.example/s"+string(rune('a'+i)), 80, 0.9)
	}
	finder := &mockCompetitorFinder{}
	f.svc.SetCompetitorFetcher(NewCompetitorFetcher(finder, &mockDataSource{}, &mockAnalyzer{}, 10, 1))

	req := phoneRequest(nil)
	req.Limit = 3
	recs := f.svc.GetProductRecommendations(context.Background(), req)

	assert.Len(t, recs, 3)
	assert.Empty(t, finder.queries)
}

func TestGetProductRecommendations_DedupAndExcludeBase(t *testing.T) {
	f := newRecommenderFixture(t)
	f.addProduct(t, "https://shop.example/dup", 80, 0.9)
	finder := &mockCompetitorFinder{refs: []domain.CompetitorRef{
		{URL: "https://shop.example/dup", Title: "Dup"},
		{URL: baseURL, Title: "Self"},
	}}
	source := &mockDataSource{errs: map[string]error{
		"https://shop.example/dup": errors.New("boom"),
		baseURL:                    errors.New("boom"),
	}}
	f.svc.SetCompetitorFetcher(NewCompetitorFetcher(finder, source, &mockAnalyzer{}, 10, 1))

	recs := f.svc.GetProductRecommendations(context.Background(), phoneRequest(nil))

	seen := map[string]bool{}
	for _, r := range recs {
		assert.NotEqual(t, baseURL, r.URL)
		assert.False(t, seen[r.URL], "duplicate %s", r.URL)
		seen[r.URL] = true
	}
	require.Len(t, recs, 1)
	assert.Equal(t, 80, recs[0].Score)
}

func TestGetProductRecommendations_EmptyFeaturesMatchNothing(t *testing.T) {
	f := newRecommenderFixture(t)
	f.addProduct(t, "https://shop.example/A", 90, 0.9)

	recs := f.svc.GetProductRecommendations(context.Background(), domain.RecommendRequest{ProductURL: baseURL})

	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestGetProductRecommendations_CacheExpiry(t *testing.T) {
	f := newRecommenderFixture(t)
	ctx := context.Background()
	f.addProduct(t, "https://shop.example/A", 70, 0.9)

	first := f.svc.GetProductRecommendations(ctx, phoneRequest(nil))
	require.Len(t, first, 1)

	f.clock.Advance(24 * time.Hour)
	f.addProduct(t, "https://shop.example/C", 95, 0.9)

	cached := f.svc.GetProductRecommendations(ctx, phoneRequest(nil))
	assert.Equal(t, first, cached)

	f.clock.Advance(48 * time.Hour)
	recomputed := f.svc.GetProductRecommendations(ctx, phoneRequest(nil))
	require.Len(t, recomputed, 2)
	assert.Equal(t, "https://shop.example/C", recomputed[0].URL)
}

func TestGetProductRecommendations_CachedResultTruncatedToLimit(t *testing.T) {
	f := newRecommenderFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Put(ctx, baseURL, []domain.Recommendation{{URL: "a"}, {URL: "b"}, {URL: "c"}}))

	req := phoneRequest(nil)
	req.Limit = 2
	recs := f.svc.GetProductRecommendations(ctx, req)

	assert.Equal(t, []domain.Recommendation{{URL: "a"}, {URL: "b"}}, recs)
	assert.Zero(t, f.embedder.calls)
}

func TestGetProductRecommendations_EmptyCacheEntryIsMiss(t *testing.T) {
	f := newRecommenderFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Put(ctx, baseURL, []domain.Recommendation{}))
	f.addProduct(t, "https://shop.example/A", 70, 0.9)

	recs := f.svc.GetProductRecommendations(ctx, phoneRequest(nil))

	assert.Len(t, recs, 1)
}

func TestGetProductRecommendations_Degrades(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, f *recommenderFixture)
		req    domain.RecommendRequest
	}{
		{
			name: "missing url",
			req:  domain.RecommendRequest{Title: "Phone"},
		},
		{
			name: "store unavailable",
			mutate: func(t *testing.T, f *recommenderFixture) {
				settings := domain.DefaultAppSettings().Recommendation
				f.svc = NewRecommendationService(&failingProductStore{err: errors.New("disk I/O error")},
					f.cache, f.embedder, nil, settings)
			},
			req: phoneRequest(nil),
		},
		{
			name: "panicking filter",
			mutate: func(t *testing.T, f *recommenderFixture) {
				f.addProduct(t, "https://shop.example/A", 90, 0.9)
				f.svc.SetCandidateFilter(panicFilter{})
			},
			req: phoneRequest(nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRecommenderFixture(t)
			if tt.mutate != nil {
				tt.mutate(t, f)
			}

			recs := f.svc.GetProductRecommendations(context.Background(), tt.req)

			require.NotNil(t, recs)
			assert.Empty(t, recs)
		})
	}
}

func TestGetProductRecommendations_CacheFailureRecomputes(t *testing.T) {
	f := newRecommenderFixture(t)
	f.addProduct(t, "https://shop.example/A", 70, 0.9)
	settings := domain.DefaultAppSettings().Recommendation
	settings.RecencyDays = 30
	svc := NewRecommendationService(f.products, &failingCache{err: errors.New("redis: connection refused")},
		f.embedder, nil, settings)
	svc.SetClock(f.clock.Now)

	recs := svc.GetProductRecommendations(context.Background(), phoneRequest(nil))

	assert.Len(t, recs, 1)
}

func TestGetProductRecommendations_EmbeddingFailureUsesZeroVector(t *testing.T) {
	f := newRecommenderFixture(t)
	f.addProduct(t, "https://shop.example/A", 70, 0.9)
	f.embedder.embedErr = errors.New("model not loaded")
	f.embedder.dims = 2

	recs := f.svc.GetProductRecommendations(context.Background(), phoneRequest(nil))

	assert.Empty(t, recs)
}

func TestStoreProduct_Idempotent(t *testing.T) {
	f := newRecommenderFixture(t)
	ctx := context.Background()
	input := domain.StoreProductInput{
		URL:   "https://www.flipkart.com/p/itm9",
		Title: "Running Shoes",
		Score: 64,
		Pros:  aspects("comfort"),
		Price: ptrFloat(2499),
	}

	_, err := f.svc.StoreProduct(ctx, input)
	require.NoError(t, err)
	input.Score = 71
	stored, err := f.svc.StoreProduct(ctx, input)
	require.NoError(t, err)

	count, err := f.products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := f.products.Get(ctx, input.URL)
	require.NoError(t, err)
	assert.Equal(t, 71, got.Score)
	assert.Equal(t, domain.CategoryClothing, got.Category)
	assert.Equal(t, domain.SiteFlipkart, got.Site)
	assert.Equal(t, []float64{1, 0}, got.Embedding)
	assert.Equal(t, stored.CreatedAt, got.CreatedAt)
}

func TestStoreProduct_Errors(t *testing.T) {
	f := newRecommenderFixture(t)

	_, err := f.svc.StoreProduct(context.Background(), domain.StoreProductInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	settings := domain.DefaultAppSettings().Recommendation
	svc := NewRecommendationService(&failingProductStore{err: domain.ErrStoreUnavailable}, f.cache, f.embedder, nil, settings)
	_, err = svc.StoreProduct(context.Background(), domain.StoreProductInput{URL: "u", Title: "t"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestGetCollaborativeRecommendations(t *testing.T) {
	f := newRecommenderFixture(t)
	ctx := context.Background()
	require.NoError(t, f.products.Upsert(ctx, domain.Product{
		URL: baseURL, Score: 60, Category: domain.CategoryElectronics, Embedding: []float64{1, 0},
		Cons: aspects("battery"),
	}))
	f.addProduct(t, "https://shop.example/equal", 60, 0.9)
	f.addProduct(t, "https://shop.example/better", 72, 0.9)
	f.addProduct(t, "https://shop.example/best", 91, 0.5)
	require.NoError(t, f.products.Upsert(ctx, domain.Product{
		URL: "https://shop.example/book", Score: 99, Category: domain.CategoryBooks,
	}))

	recs, err := f.svc.GetCollaborativeRecommendations(ctx, baseURL)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "https://shop.example/best", recs[0].URL)
	assert.InDelta(t, 0.5, recs[0].Similarity, 1e-9)
	assert.Equal(t, "https://shop.example/better", recs[1].URL)
	assert.Equal(t, 31, recs[0].Explanation.ScoreDifference)
	assert.Contains(t, recs[0].Explanation.Reasons, "Same product category - direct comparison")
	require.Len(t, recs[0].Explanation.KeyDifferences, 1)
	assert.Equal(t, domain.KeyDifferenceFewerCons, recs[0].Explanation.KeyDifferences[0].Type)
}

func TestGetCollaborativeRecommendations_UnknownProduct(t *testing.T) {
	f := newRecommenderFixture(t)

	_, err := f.svc.GetCollaborativeRecommendations(context.Background(), "https://nowhere.example")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type panicFilter struct{}

func (panicFilter) Match(domain.Candidate) (bool, error) { panic("filter exploded") }

func (panicFilter) Expression() string { return "panic" }
