// Package lexicon provides a keyword-lexicon review analyzer.
//
// Sentences are scored by counting positive and negative lexicon words.
// Aspect sentiments are outlier-trimmed means over the sentences that
// mention an aspect keyword. The worth-to-buy score blends overall
// sentiment, aspect sentiment, review authenticity and data volume.
package lexicon

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

// Analysis thresholds.
const (
	minReviewLen      = 10
	minSentenceLen    = 5
	exampleStrength   = 0.3
	maxExamples       = 3
	polarityThreshold = 0.1
	confidenceReviews = 15.0
)

// Score weights.
const (
	sentimentWeight    = 0.35
	aspectWeight       = 0.35
	authenticityWeight = 0.15
	dataQualityWeight  = 0.15

	coverageAspects     = 7.0
	coverageBonus       = 0.05
	strongNegative      = -0.3
	negativePenalty     = 0.08
	dataQualityReviews  = 20.0
	techAspectThreshold = 0.2
	techAspectBonus     = 0.05
	emptyScore          = 50.0
	minAuthenticityData = 3
	neutralAuthenticity = 0.5
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Analyzer scores reviews with the built-in lexicon. It is stateless.
type Analyzer struct{}

// New creates a lexicon analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze extracts aspect sentiments and the overall sentiment distribution.
func (a *Analyzer) Analyze(_ context.Context, reviews []string, kind domain.ProductType) (*domain.Analysis, error) {
	if kind == "" {
		kind = domain.ProductTypeGeneral
	}
	if len(reviews) == 0 {
		return &domain.Analysis{
			AspectSentiments: map[string]float64{},
			Overall:          domain.OverallSentiment{Neutral: 1},
			AspectSupport:    map[string][]string{},
			Meta:             domain.AnalysisMeta{Type: kind},
		}, nil
	}

	clean := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if len(strings.TrimSpace(r)) > minReviewLen {
			clean = append(clean, r)
		}
	}

	aspects, support := ExtractAspects(clean, kind)

	var overall domain.OverallSentiment
	sentences := 0
	for _, r := range clean {
		s := Sentiment(r)
		switch {
		case s > polarityThreshold:
			overall.Positive++
		case s < -polarityThreshold:
			overall.Negative++
		default:
			overall.Neutral++
		}
		sentences += len(sentenceSplit.Split(r, -1))
	}

	return &domain.Analysis{
		AspectSentiments: aspects,
		Overall:          overall,
		AspectSupport:    support,
		Meta: domain.AnalysisMeta{
			ReviewsUsed: len(clean),
			Sentences:   sentences,
			Confidence:  math.Min(float64(len(clean))/confidenceReviews, 1),
			Type:        kind,
			AvgQuality:  Authenticity(clean),
		},
	}, nil
}

// Score computes the worth-to-buy score on a 0-100 scale.
func (a *Analyzer) Score(
	_ context.Context, reviews []string, aspects map[string]float64, kind domain.ProductType,
) (float64, error) {
	return EnhancedScore(reviews, aspects, kind), nil
}

// Sentiment scores text in [-1, 1] style units: 0.5 plus 0.1 per extra
// positive word, -0.5 minus 0.1 per extra negative word, 0 on a tie.
func Sentiment(text string) float64 {
	lower := strings.ToLower(text)
	pos := countPresent(lower, positiveWords)
	neg := countPresent(lower, negativeWords)
	switch {
	case pos > neg:
		return 0.5 + float64(pos-neg)*0.1
	case neg > pos:
		return -0.5 - float64(neg-pos)*0.1
	default:
		return 0
	}
}

func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// ExtractAspects returns the mean sentiment per mentioned aspect and up to
// three strongly polarised example sentences per aspect.
func ExtractAspects(reviews []string, kind domain.ProductType) (map[string]float64, map[string][]string) {
	table := aspectsFor(kind)
	scores := make(map[string][]float64)
	support := make(map[string][]string)

	for _, review := range reviews {
		if len(strings.TrimSpace(review)) < minReviewLen {
			continue
		}
		for _, sentence := range sentenceSplit.Split(review, -1) {
			trimmed := strings.TrimSpace(sentence)
			if len(trimmed) < minSentenceLen {
				continue
			}
			lower := strings.ToLower(sentence)
			s := Sentiment(sentence)
			for _, asp := range table {
				if !mentions(lower, asp.keywords) {
					continue
				}
				scores[asp.name] = append(scores[asp.name], s)
				if math.Abs(s) > exampleStrength && len(support[asp.name]) < maxExamples {
					support[asp.name] = append(support[asp.name], trimmed)
				}
			}
		}
	}

	result := make(map[string]float64, len(scores))
	for name, values := range scores {
		result[name] = trimmedMean(values)
	}
	return result, support
}

func mentions(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// trimmedMean drops the lowest and highest value when more than two remain.
func trimmedMean(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) > 2 {
		sorted = sorted[1 : len(sorted)-1]
	}
	return mean(sorted)
}

// Authenticity averages length diversity, vocabulary diversity and
// sentiment diversity. Fewer than three reviews score 0.5.
func Authenticity(reviews []string) float64 {
	if len(reviews) < minAuthenticityData {
		return neutralAuthenticity
	}

	lengths := make([]float64, len(reviews))
	sentiments := make([]float64, len(reviews))
	var words []string
	for i, r := range reviews {
		lengths[i] = float64(len(r))
		sentiments[i] = Sentiment(r)
		words = append(words, wordPattern.FindAllString(strings.ToLower(r), -1)...)
	}

	lengthFactor := math.Min(stdev(lengths)/100, 1)

	uniqueRatio := 0.0
	if len(words) > 0 {
		distinct := make(map[string]struct{}, len(words))
		for _, w := range words {
			distinct[w] = struct{}{}
		}
		uniqueRatio = float64(len(distinct)) / float64(len(words))
	}

	sentimentFactor := math.Min(stdev(sentiments), 1)

	return (lengthFactor + uniqueRatio + sentimentFactor) / 3
}

// EnhancedScore combines sentiment, aspects, authenticity and data volume
// into a 0-100 score. No reviews score 50.
func EnhancedScore(reviews []string, aspects map[string]float64, kind domain.ProductType) float64 {
	if len(reviews) == 0 {
		return emptyScore
	}

	sentiments := make([]float64, len(reviews))
	for i, r := range reviews {
		sentiments[i] = Sentiment(r)
	}
	sentimentScore := (mean(sentiments) + 1) / 2

	aspectScore := 0.5
	if len(aspects) > 0 {
		values := make([]float64, 0, len(aspects))
		negatives := 0
		for _, v := range aspects {
			values = append(values, v)
			if v < strongNegative {
				negatives++
			}
		}
		aspectScore = (mean(values) + 1) / 2
		aspectScore += math.Min(float64(len(aspects))/coverageAspects, 1) * coverageBonus
		aspectScore -= float64(negatives) * negativePenalty
	}

	authenticity := Authenticity(reviews)
	dataQuality := math.Min(float64(len(reviews))/dataQualityReviews, 1)

	weight := 1.0
	if kind == domain.ProductTypeSmartphone || kind == domain.ProductTypeLaptop {
		if v, ok := aspects["performance"]; ok && v > techAspectThreshold {
			weight += techAspectBonus
		}
		if v, ok := aspects["quality"]; ok && v > techAspectThreshold {
			weight += techAspectBonus
		}
	}

	final := (sentimentScore*sentimentWeight +
		aspectScore*aspectWeight +
		authenticity*authenticityWeight +
		dataQuality*dataQualityWeight) * weight
	return math.Max(0, math.Min(1, final)) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation; fewer than two values give 0.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
