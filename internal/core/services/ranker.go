package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// Final ranking weights. These differ from the similarity search weights
// and both orderings are kept as separate stages.
const (
	rankScoreWeight      = 0.7
	rankSimilarityWeight = 0.3

	maxTitleRunes = 100
)

// RankOptions configures the final ranking stage.
type RankOptions struct {
	// BaseURL is never returned.
	BaseURL string

	// CurrentScore, when set, drops candidates scoring below
	// CurrentScore + MinImprovement.
	CurrentScore   *int
	MinImprovement int

	// Limit truncates the result. Zero or less means no limit.
	Limit int

	// Filter is an optional extra predicate.
	Filter driven.CandidateFilter
}

// RankCandidates filters, orders and deduplicates merged candidates.
// Ordering is by 0.7*score + 0.3*(similarity*100), stable for ties; the
// first occurrence of a URL wins and the base URL is excluded.
func RankCandidates(candidates []domain.Candidate, opts RankOptions) []domain.Candidate {
	kept := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if opts.CurrentScore != nil && c.Score < *opts.CurrentScore+opts.MinImprovement {
			continue
		}
		if opts.Filter != nil {
			ok, err := opts.Filter.Match(c)
			if err != nil {
				logger.Warn("Candidate filter failed for %s: %v", c.URL, err)
				continue
			}
			if !ok {
				continue
			}
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return finalRankKey(kept[i]) > finalRankKey(kept[j])
	})

	ranked := make([]domain.Candidate, 0, len(kept))
	seen := make(map[string]struct{}, len(kept))
	for _, c := range kept {
		if opts.Limit > 0 && len(ranked) >= opts.Limit {
			break
		}
		if c.URL == opts.BaseURL {
			continue
		}
		if _, dup := seen[c.URL]; dup {
			continue
		}
		seen[c.URL] = struct{}{}
		ranked = append(ranked, c)
	}
	return ranked
}

func finalRankKey(c domain.Candidate) float64 {
	return float64(c.Score)*rankScoreWeight + c.EffectiveSimilarity()*100*rankSimilarityWeight
}

// FormatRecommendation builds the output record for a ranked candidate.
func FormatRecommendation(c domain.Candidate, explanation *domain.Explanation) domain.Recommendation {
	return domain.Recommendation{
		Title:       truncateRunes(c.Title, maxTitleRunes),
		URL:         c.URL,
		Price:       c.Price,
		Score:       c.Score,
		Similarity:  math.Round(c.EffectiveSimilarity()*1000) / 1000,
		Site:        c.Site,
		Reason:      fmt.Sprintf("Similar product with %d%% score", c.Score),
		Explanation: explanation,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
