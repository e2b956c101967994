package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Non-empty text embeds to vector; empty text embeds to zeros.
type mockEmbeddingService struct {
	vector   []float64
	embedErr error
	dims     int
	calls    int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float64, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if text == "" {
		return make([]float64, m.Dimensions()), nil
	}
	return append([]float64(nil), m.vector...), nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.vector)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

// mockPhraseTagger implements driven.PhraseTagger for testing.
type mockPhraseTagger struct {
	tagged *driven.TaggedText
	tagErr error
}

func (m *mockPhraseTagger) Tag(_ context.Context, _ string) (*driven.TaggedText, error) {
	return m.tagged, m.tagErr
}

func (m *mockPhraseTagger) Ping(_ context.Context) error { return nil }

func (m *mockPhraseTagger) ModelName() string { return "mock-tagger" }

func (m *mockPhraseTagger) Close() error { return nil }

// mockCompetitorFinder implements driven.CompetitorFinder for testing.
type mockCompetitorFinder struct {
	refs    []domain.CompetitorRef
	findErr error
	queries []driven.CompetitorQuery
}

func (m *mockCompetitorFinder) FindCompetitors(_ context.Context, q driven.CompetitorQuery) ([]domain.CompetitorRef, error) {
	m.queries = append(m.queries, q)
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.refs, nil
}

// mockDataSource implements driven.DataSource for testing. Pages are keyed
// by URL; a URL present in errs fails, one in panics panics.
type mockDataSource struct {
	mu     sync.Mutex
	pages  map[string]*domain.ProductData
	errs   map[string]error
	panics map[string]bool
	calls  []string
}

func (m *mockDataSource) Fetch(_ context.Context, url string) (*domain.ProductData, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()
	if m.panics[url] {
		panic("page parser exploded")
	}
	if err := m.errs[url]; err != nil {
		return nil, err
	}
	return m.pages[url], nil
}

// mockAnalyzer implements driven.Analyzer for testing. Analyses are keyed
// by the first review text.
type mockAnalyzer struct {
	byFirstReview map[string]*domain.Analysis
	analyzeErr    error
	score         float64
	scoreErr      error
}

func (m *mockAnalyzer) Analyze(_ context.Context, reviews []string, _ domain.ProductType) (*domain.Analysis, error) {
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return m.byFirstReview[reviews[0]], nil
}

func (m *mockAnalyzer) Score(_ context.Context, _ []string, _ map[string]float64, _ domain.ProductType) (float64, error) {
	return m.score, m.scoreErr
}

// mockFilter implements driven.CandidateFilter for testing.
type mockFilter struct {
	reject  map[string]bool
	failing map[string]bool
}

func (m *mockFilter) Match(c domain.Candidate) (bool, error) {
	if m.failing[c.URL] {
		return false, errors.New("no such key: rating")
	}
	return !m.reject[c.URL], nil
}

func (m *mockFilter) Expression() string { return "mock" }

// failingProductStore returns errors from every read.
type failingProductStore struct {
	driven.ProductStore
	err error
}

func (f *failingProductStore) Get(_ context.Context, _ string) (*domain.Product, error) {
	return nil, f.err
}

func (f *failingProductStore) FindCandidates(_ context.Context, _ driven.CandidateQuery) ([]domain.Product, error) {
	return nil, f.err
}

func (f *failingProductStore) Upsert(_ context.Context, _ domain.Product) error {
	return f.err
}

// failingCache fails every call.
type failingCache struct {
	err error
}

func (f *failingCache) Get(_ context.Context, _ string, _ time.Duration) ([]domain.Recommendation, error) {
	return nil, f.err
}

func (f *failingCache) Put(_ context.Context, _ string, _ []domain.Recommendation) error {
	return f.err
}

// fakeClock is a settable clock shared across collaborators.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func analysisWithCounts(pos, neg, neu int) *domain.Analysis {
	return &domain.Analysis{
		AspectSentiments: map[string]float64{},
		Overall:          domain.OverallSentiment{Positive: pos, Negative: neg, Neutral: neu},
	}
}

func ptrInt(v int) *int { return &v }

func ptrFloat(v float64) *float64 { return &v }
