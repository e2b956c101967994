package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is a product taxonomy tag assigned by keyword classification.
type Category string

// Known categories, in classification priority order.
const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryBeauty      Category = "beauty"
	CategoryBooks       Category = "books"
	CategorySports      Category = "sports"
	CategoryAutomotive  Category = "automotive"
	CategoryHealth      Category = "health"

	// CategoryGeneral is assigned when no keyword matches.
	CategoryGeneral Category = "general"
)

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// ProductType is the finer product kind review analysis is tuned for.
type ProductType string

// Known product types.
const (
	ProductTypeSmartphone ProductType = "smartphone"
	ProductTypeLaptop     ProductType = "laptop"
	ProductTypeTV         ProductType = "tv"
	ProductTypeHeadphones ProductType = "headphones"
	ProductTypeCamera     ProductType = "camera"
	ProductTypeTablet     ProductType = "tablet"
	ProductTypeWatch      ProductType = "watch"
	ProductTypeGeneral    ProductType = "general"
)

// productTypeKeywords is checked in order; the first match wins.
var productTypeKeywords = []struct {
	kind     ProductType
	keywords []string
}{
	{ProductTypeSmartphone, []string{"phone", "mobile", "smartphone", "iphone", "galaxy", "pixel", "oneplus"}},
	{ProductTypeLaptop, []string{"laptop", "notebook", "macbook", "thinkpad", "computer", "gaming laptop"}},
	{ProductTypeTV, []string{"tv", "television", "smart tv", "oled", "led", "qled", "4k tv"}},
	{ProductTypeHeadphones, []string{"headphones", "earphones", "earbuds", "airpods", "headset"}},
	{ProductTypeCamera, []string{"camera", "dslr", "mirrorless", "lens", "photography"}},
	{ProductTypeTablet, []string{"tablet", "ipad", "tab", "kindle"}},
	{ProductTypeWatch, []string{"watch", "smartwatch", "fitness tracker", "apple watch"}},
}

// String returns the string representation.
func (p ProductType) String() string {
	return string(p)
}

// DetectProductType matches keywords against the URL and the title and
// description text. Returns ProductTypeGeneral when nothing matches.
func DetectProductType(url, title, description string) ProductType {
	lowerURL := strings.ToLower(url)
	text := strings.ToLower(title + " " + description)
	for _, entry := range productTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowerURL, kw) || strings.Contains(text, kw) {
				return entry.kind
			}
		}
	}
	return ProductTypeGeneral
}

// Site identifies the marketplace a product URL belongs to.
type Site string

// Known sites.
const (
	SiteAmazon   Site = "amazon"
	SiteFlipkart Site = "flipkart"
	SiteOther    Site = "other"
)

// String returns the string representation.
func (s Site) String() string {
	return string(s)
}

// SiteFromURL derives the site tag from a product URL.
func SiteFromURL(url string) Site {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "amazon"):
		return SiteAmazon
	case strings.Contains(lower, "flipkart"):
		return SiteFlipkart
	default:
		return SiteOther
	}
}

// AspectSentiment is a named product attribute with its mean sentiment.
// It serialises as a two element JSON array: ["battery", 0.62].
type AspectSentiment struct {
	Aspect    string
	Sentiment float64
}

// MarshalJSON encodes the pair as [aspect, sentiment].
func (a AspectSentiment) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Aspect, a.Sentiment})
}

// UnmarshalJSON decodes [aspect, sentiment] or a bare aspect string.
func (a *AspectSentiment) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Aspect = name
		a.Sentiment = 0
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("aspect sentiment: %w", err)
	}
	if len(pair) == 0 {
		return fmt.Errorf("aspect sentiment: empty pair: %w", ErrInvalidInput)
	}
	if err := json.Unmarshal(pair[0], &a.Aspect); err != nil {
		return fmt.Errorf("aspect name: %w", err)
	}
	a.Sentiment = 0
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &a.Sentiment); err != nil {
			return fmt.Errorf("aspect sentiment value: %w", err)
		}
	}
	return nil
}

// AspectNames returns the aspect names in order.
func AspectNames(items []AspectSentiment) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Aspect
	}
	return names
}

// Product is an analysed product page. URL is the identity; storing a
// product with an existing URL replaces the previous record.
type Product struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       *float64          `json:"price"`
	Score       int               `json:"score"`
	Pros        []AspectSentiment `json:"pros"`
	Cons        []AspectSentiment `json:"cons"`
	Category    Category          `json:"category"`
	Site        Site              `json:"site"`
	Embedding   []float64         `json:"embedding,omitempty"`
	Analysis    *Analysis         `json:"analysis_data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ProductData is what a data source returns for one product page.
type ProductData struct {
	URL         string
	Reviews     []string
	Title       string
	Description string
	Type        ProductType
	Price       *float64
}

// HasReviews reports whether the page yielded any review text.
func (d *ProductData) HasReviews() bool {
	return d != nil && len(d.Reviews) > 0
}

// OverallSentiment counts reviews by polarity.
type OverallSentiment struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total returns the number of classified reviews.
func (o OverallSentiment) Total() int {
	return o.Positive + o.Negative + o.Neutral
}

// PositiveScore returns the share of positive reviews on a 0-100 scale,
// or 50 when nothing was classified.
func (o OverallSentiment) PositiveScore() int {
	total := o.Total()
	if total <= 0 {
		return 50
	}
	return int(float64(o.Positive) / float64(total) * 100)
}

// AnalysisMeta describes the data an analysis was computed from.
type AnalysisMeta struct {
	ReviewsUsed int         `json:"reviews_used"`
	Sentences   int         `json:"sentences"`
	Confidence  float64     `json:"confidence"`
	Type        ProductType `json:"category"`
	AvgQuality  float64     `json:"avg_quality"`
}

// Analysis is the review analyser's output.
type Analysis struct {
	AspectSentiments map[string]float64  `json:"aspect_sentiments"`
	Overall          OverallSentiment    `json:"overall_sentiment"`
	AspectSupport    map[string][]string `json:"aspect_support"`
	Meta             AnalysisMeta        `json:"meta"`
}

// ReportMeta carries the analyser's confidence figures for a report.
type ReportMeta struct {
	Confidence  float64 `json:"confidence"`
	DataQuality float64 `json:"data_quality"`
}

// ProductReport is the result of analysing a product page end to end.
type ProductReport struct {
	Product         Product          `json:"product"`
	ReviewCount     int              `json:"review_count"`
	Verdict         string           `json:"voice_verdict"`
	Recommendation  string           `json:"recommendation"`
	Insights        string           `json:"insights"`
	Meta            ReportMeta       `json:"meta"`
	Recommendations []Recommendation `json:"recommendations"`
}

// StoreProductInput carries the facts needed to persist a product.
// Features, category, site and embedding are derived on store.
type StoreProductInput struct {
	URL         string
	Title       string
	Description string
	Price       *float64
	Score       int
	Pros        []AspectSentiment
	Cons        []AspectSentiment
	Analysis    *Analysis
}

// ListOptions configures product listing.
type ListOptions struct {
	Category Category
	Limit    int
	Offset   int
}
