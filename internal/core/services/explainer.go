package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// Explanation thresholds.
const (
	betterPriceRatio  = 0.95
	premiumPriceRatio = 1.05

	maxDifferenceItems    = 3
	maxDifferenceExamples = 2
	maxSummaryReasons     = 2
)

// ExplainRecommendation describes why candidate is recommended over base.
// It only formats facts that are already computed.
func ExplainRecommendation(base domain.BaseProduct, candidate domain.Candidate, similarity float64) domain.Explanation {
	exp := domain.Explanation{
		Reasons:         []string{},
		ScoreDifference: candidate.Score - base.Score,
		Similarity:      fmt.Sprintf("%.0f%% similar", similarity*100),
		KeyDifferences:  []domain.KeyDifference{},
	}

	if exp.ScoreDifference > 0 {
		exp.Reasons = append(exp.Reasons, fmt.Sprintf(
			"Higher worth score by %d points (%d/100 vs %d/100)",
			exp.ScoreDifference, candidate.Score, base.Score))
	}

	if base.Category == candidate.Category {
		exp.Reasons = append(exp.Reasons, "Same product category - direct comparison")
	}

	if extra := aspectDifference(candidate.Pros, base.Pros); len(extra) > 0 {
		exp.KeyDifferences = append(exp.KeyDifferences, domain.KeyDifference{
			Type:  domain.KeyDifferenceAdditionalPros,
			Items: limitStrings(extra, maxDifferenceItems),
			Description: fmt.Sprintf("Customers praise %s that aren't mentioned for the original product",
				strings.Join(limitStrings(extra, maxDifferenceExamples), ", ")),
		})
	}

	if avoided := aspectDifference(base.Cons, candidate.Cons); len(avoided) > 0 {
		exp.KeyDifferences = append(exp.KeyDifferences, domain.KeyDifference{
			Type:  domain.KeyDifferenceFewerCons,
			Items: limitStrings(avoided, maxDifferenceItems),
			Description: fmt.Sprintf("Avoids issues like %s found in the original product",
				strings.Join(limitStrings(avoided, maxDifferenceExamples), ", ")),
		})
	}

	if reason, ok := priceReason(base.Price, candidate.Price); ok {
		exp.Reasons = append(exp.Reasons, reason)
	}

	if len(exp.Reasons) > 0 {
		exp.Recommendation = strings.Join(limitStrings(exp.Reasons, maxSummaryReasons), " • ")
	} else {
		exp.Recommendation = fmt.Sprintf("Similar product with %.0f%% matching features", similarity*100)
	}

	return exp
}

// priceReason compares prices when both are present and positive.
func priceReason(basePrice, candidatePrice *float64) (string, bool) {
	if basePrice == nil || candidatePrice == nil || *basePrice <= 0 || *candidatePrice <= 0 {
		return "", false
	}

	ratio := *candidatePrice / *basePrice
	switch {
	case ratio < betterPriceRatio:
		return fmt.Sprintf("Better price (%.0f%% of original)", ratio*100), true
	case ratio > premiumPriceRatio:
		return fmt.Sprintf("Premium option (%.0f%% of original price)", ratio*100), true
	default:
		return "", false
	}
}

// aspectDifference returns aspect names in from that are absent in other,
// in from's order without duplicates.
func aspectDifference(from, other []domain.AspectSentiment) []string {
	exclude := make(map[string]struct{}, len(other))
	for _, a := range other {
		exclude[a.Aspect] = struct{}{}
	}

	var diff []string
	for _, a := range from {
		if _, ok := exclude[a.Aspect]; ok {
			continue
		}
		exclude[a.Aspect] = struct{}{}
		diff = append(diff, a.Aspect)
	}
	return diff
}

func limitStrings(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
