package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

func candidate(url string, score int, sim float64) domain.Candidate {
	return domain.Candidate{URL: url, Title: "Product " + url, Score: score, Similarity: &sim}
}

func urls(cs []domain.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.URL
	}
	return out
}

func TestRankCandidates_ScoreMargin(t *testing.T) {
	got := RankCandidates([]domain.Candidate{
		candidate("A", 70, 0.9),
		candidate("B", 52, 0.95),
		candidate("C", 55, 0.2),
	}, RankOptions{CurrentScore: ptrInt(50), MinImprovement: 5})

	assert.Equal(t, []string{"A", "C"}, urls(got))
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Score, 55)
	}
}

func TestRankCandidates_FinalWeighting(t *testing.T) {
	// 0.7*80 + 0.3*20 = 62 vs 0.7*70 + 0.3*90 = 76
	got := RankCandidates([]domain.Candidate{
		candidate("high-score", 80, 0.2),
		candidate("high-sim", 70, 0.9),
	}, RankOptions{})

	assert.Equal(t, []string{"high-sim", "high-score"}, urls(got))
}

func TestRankCandidates_DedupAndExcludeBase(t *testing.T) {
	got := RankCandidates([]domain.Candidate{
		candidate("base", 99, 1),
		candidate("x", 80, 0.5),
		candidate("x", 90, 0.9),
		candidate("y", 60, 0.5),
	}, RankOptions{BaseURL: "base"})

	require.Equal(t, []string{"x", "y"}, urls(got))
	assert.Equal(t, 90, got[0].Score)
}

func TestRankCandidates_Limit(t *testing.T) {
	got := RankCandidates([]domain.Candidate{
		candidate("a", 90, 0.5),
		candidate("a", 89, 0.5),
		candidate("b", 80, 0.5),
		candidate("c", 70, 0.5),
	}, RankOptions{Limit: 2})

	assert.Equal(t, []string{"a", "b"}, urls(got))
}

func TestRankCandidates_NilSimilarityUsesDefault(t *testing.T) {
	got := RankCandidates([]domain.Candidate{
		{URL: "unknown", Score: 70},
		candidate("known", 70, 0.4),
	}, RankOptions{})

	assert.Equal(t, []string{"unknown", "known"}, urls(got))
}

func TestRankCandidates_Filter(t *testing.T) {
	filter := &mockFilter{
		reject:  map[string]bool{"rejected": true},
		failing: map[string]bool{"broken": true},
	}

	got := RankCandidates([]domain.Candidate{
		candidate("kept", 70, 0.5),
		candidate("rejected", 90, 0.5),
		candidate("broken", 95, 0.5),
	}, RankOptions{Filter: filter})

	assert.Equal(t, []string{"kept"}, urls(got))
}

func TestFormatRecommendation(t *testing.T) {
	price := 499.0
	c := domain.Candidate{
		URL:        "https://www.amazon.in/dp/X1",
		Title:      strings.Repeat("é", 120),
		Price:      &price,
		Score:      82,
		Similarity: ptrFloat(0.87654),
		Site:       domain.SiteAmazon,
	}
	exp := &domain.Explanation{Recommendation: "summary"}

	rec := FormatRecommendation(c, exp)

	assert.Equal(t, 100, len([]rune(rec.Title)))
	assert.InDelta(t, 0.877, rec.Similarity, 1e-12)
	assert.Equal(t, "Similar product with 82% score", rec.Reason)
	assert.Equal(t, domain.SiteAmazon, rec.Site)
	assert.Equal(t, &price, rec.Price)
	assert.Same(t, exp, rec.Explanation)
}
