package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// Fallback meta figures when the analyser reports none.
const defaultReportConfidence = 0.8

// verdictBand maps a score to its recommendation wording.
type verdictBand struct {
	min        int
	label      string
	wording    string
	strength   string
	assessment string
}

var verdictBands = []verdictBand{
	{75, "Highly Recommended", "comes highly recommended", "excellent", "This product receives strong positive feedback from customers."},
	{60, "Recommended", "is a solid choice", "good", "This product has generally positive reviews with some mixed feedback."},
	{40, "Acceptable", "has mixed reviews", "average", "This product receives mixed reviews with notable concerns."},
	{0, "Not Recommended", "may not be the best option", "below average", "This product has significant negative feedback from customers."},
}

func bandFor(score int) verdictBand {
	for _, b := range verdictBands {
		if score >= b.min {
			return b
		}
	}
	return verdictBands[len(verdictBands)-1]
}

var verdictIntros = map[domain.ProductType]string{
	domain.ProductTypeSmartphone: "This smartphone",
	domain.ProductTypeLaptop:     "This laptop",
	domain.ProductTypeTV:         "This television",
	domain.ProductTypeHeadphones: "These headphones",
	domain.ProductTypeCamera:     "This camera",
	domain.ProductTypeTablet:     "This tablet",
	domain.ProductTypeWatch:      "This smartwatch",
}

// RecommendationLabel returns the short recommendation for a 0-100 score.
func RecommendationLabel(score int) string {
	return bandFor(score).label
}

// VoiceVerdict renders a spoken-style verdict from the score and the
// leading pros and cons. Only aspects beyond +/-0.1 are mentioned.
func VoiceVerdict(score int, pros, cons []domain.AspectSentiment, kind domain.ProductType) string {
	intro, ok := verdictIntros[kind]
	if !ok {
		intro = "This product"
	}
	band := bandFor(score)
	sentences := []string{fmt.Sprintf("%s %s with a %s score of %d out of 100", intro, band.wording, band.strength, score)}

	if liked := significantAspects(pros, func(v float64) bool { return v > prosConsThreshold }); len(liked) > 0 {
		var s string
		switch kind {
		case domain.ProductTypeSmartphone:
			s = "Users particularly love the " + strings.Join(liked, " and ")
		case domain.ProductTypeLaptop:
			s = "The " + liked[0] + " receives excellent feedback"
			if len(liked) > 1 {
				s += ", along with the " + liked[1]
			}
		default:
			s = "Customers appreciate the " + strings.Join(liked, " and ")
		}
		sentences = append(sentences, s)
	}

	if disliked := significantAspects(cons, func(v float64) bool { return v < -prosConsThreshold }); len(disliked) > 0 {
		sentences = append(sentences, "However, some users have concerns about the "+strings.Join(disliked, " and "))
	}

	switch {
	case score >= 70 && (kind == domain.ProductTypeSmartphone || kind == domain.ProductTypeLaptop):
		sentences = append(sentences, "This is a reliable choice for most users")
	case score >= 70:
		sentences = append(sentences, "Overall, this is a quality product worth considering")
	case score >= 50:
		sentences = append(sentences, "Consider your specific needs before purchasing")
	default:
		sentences = append(sentences, "You might want to explore other options")
	}
	return strings.Join(sentences, ". ") + "."
}

// Insights summarises the score, the strongest and weakest aspects and the
// size of the review sample in a few sentences.
func Insights(reviewCount int, aspects map[string]float64, score int) string {
	parts := []string{bandFor(score).assessment}

	ranked := make([]domain.AspectSentiment, 0, len(aspects))
	for name, v := range aspects {
		ranked = append(ranked, domain.AspectSentiment{Aspect: name, Sentiment: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Sentiment != ranked[j].Sentiment {
			return ranked[i].Sentiment > ranked[j].Sentiment
		}
		return ranked[i].Aspect < ranked[j].Aspect
	})

	var strengths []string
	for i := 0; i < len(ranked) && i < 2; i++ {
		if ranked[i].Sentiment > prosConsThreshold {
			strengths = append(strengths, ranked[i].Aspect)
		}
	}
	if len(strengths) > 0 {
		parts = append(parts, fmt.Sprintf("Customers particularly appreciate the %s.", strings.Join(strengths, " and ")))
	}

	var concerns []string
	for i := len(ranked) - 1; i >= 0 && i >= len(ranked)-2; i-- {
		if ranked[i].Sentiment < -prosConsThreshold {
			concerns = append(concerns, ranked[i].Aspect)
		}
	}
	if len(concerns) > 0 {
		parts = append(parts, fmt.Sprintf("Common concerns include the %s.", strings.Join(concerns, " and ")))
	}

	switch {
	case reviewCount >= 20:
		parts = append(parts, fmt.Sprintf("Analysis based on %d customer reviews provides high confidence.", reviewCount))
	case reviewCount >= 10:
		parts = append(parts, fmt.Sprintf("Analysis based on %d reviews provides good confidence.", reviewCount))
	default:
		parts = append(parts, fmt.Sprintf("Limited to %d reviews - consider checking more sources.", reviewCount))
	}
	return strings.Join(parts, " ")
}

// reportMeta copies the analyser's confidence and average review quality,
// falling back to 0.8 for either when unset.
func reportMeta(meta domain.AnalysisMeta) domain.ReportMeta {
	out := domain.ReportMeta{Confidence: meta.Confidence, DataQuality: meta.AvgQuality}
	if out.Confidence <= 0 {
		out.Confidence = defaultReportConfidence
	}
	if out.DataQuality <= 0 {
		out.DataQuality = defaultReportConfidence
	}
	return out
}

// significantAspects returns up to two aspect names whose sentiment passes keep.
func significantAspects(items []domain.AspectSentiment, keep func(float64) bool) []string {
	var names []string
	for _, a := range items {
		if len(names) == 2 {
			break
		}
		if keep(a.Sentiment) {
			names = append(names, a.Aspect)
		}
	}
	return names
}
