package web

import (
	"regexp"
	"strconv"
	"strings"
)

// Review cleaning limits.
const (
	minReviewLen   = 20
	maxReviewLen   = 1000
	maxReviews     = 50
	maxDescParts   = 5
	minDescPartLen = 10
	maxDescLen     = 2000
)

// spamPhrases mark page chrome scraped along with review text.
var spamPhrases = []string{
	"helpful", "report abuse", "verified purchase", "customer images",
	"see all photos", "read more", "show less", "translate", "top review",
}

// meaningfulWords must appear at least once for a review to be kept.
var meaningfulWords = []string{
	"good", "bad", "excellent", "poor", "quality", "product",
	"recommend", "love", "hate", "amazing", "terrible", "perfect",
}

var priceNumber = regexp.MustCompile(`\d+\.?\d*`)

// CleanReviews trims reviews and drops ones that are too short or too long,
// look like page chrome, repeat an earlier review (case-insensitively) or
// carry no opinion words. At most 50 reviews are kept.
func CleanReviews(reviews []string) []string {
	cleaned := make([]string, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))

	for _, review := range reviews {
		review = strings.TrimSpace(review)
		if len(review) < minReviewLen || len(review) > maxReviewLen {
			continue
		}

		lower := strings.ToLower(review)
		if containsAny(lower, spamPhrases) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}

		if !containsAny(lower, meaningfulWords) {
			continue
		}
		cleaned = append(cleaned, review)
		if len(cleaned) == maxReviews {
			break
		}
	}
	return cleaned
}

// ParsePrice extracts the first number from price text such as "₹1,299.00".
// Thousands separators are ignored.
func ParsePrice(text string) (float64, bool) {
	match := priceNumber.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
