package domain

import "time"

// DefaultSimilarity is assumed for candidates that carry no similarity.
const DefaultSimilarity = 0.5

// Recommendation is a better-scoring alternative to a base product.
type Recommendation struct {
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Price       *float64     `json:"price"`
	Score       int          `json:"score"`
	Similarity  float64      `json:"similarity"`
	Site        Site         `json:"site"`
	Reason      string       `json:"reason"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// KeyDifferenceType names a kind of pros/cons difference.
type KeyDifferenceType string

// Key difference kinds.
const (
	KeyDifferenceAdditionalPros KeyDifferenceType = "additional_pros"
	KeyDifferenceFewerCons      KeyDifferenceType = "fewer_cons"
)

// KeyDifference is a structured pros/cons comparison item.
type KeyDifference struct {
	Type        KeyDifferenceType `json:"type"`
	Items       []string          `json:"items"`
	Description string            `json:"description"`
}

// Explanation describes why a candidate is recommended over the base product.
type Explanation struct {
	Recommendation  string          `json:"recommendation"`
	Reasons         []string        `json:"reasons"`
	ScoreDifference int             `json:"score_difference"`
	Similarity      string          `json:"similarity"`
	KeyDifferences  []KeyDifference `json:"key_differences"`
}

// CandidateSource records where a ranking candidate came from.
type CandidateSource string

// Candidate sources.
const (
	SourceStore         CandidateSource = "store"
	SourceSearch        CandidateSource = "search"
	SourceCollaborative CandidateSource = "collaborative"
)

// Candidate is a product under consideration for recommendation.
type Candidate struct {
	URL        string
	Title      string
	Price      *float64
	Score      int
	Similarity *float64
	Site       Site
	Source     CandidateSource
	Category   Category
	Pros       []AspectSentiment
	Cons       []AspectSentiment
}

// EffectiveSimilarity returns the candidate's similarity, or
// DefaultSimilarity when none was computed.
func (c Candidate) EffectiveSimilarity() float64 {
	if c.Similarity == nil {
		return DefaultSimilarity
	}
	return *c.Similarity
}

// BaseProduct holds the facts about the product recommendations are
// compared against.
type BaseProduct struct {
	URL      string
	Score    int
	Category Category
	Price    *float64
	Pros     []AspectSentiment
	Cons     []AspectSentiment
}

// RecommendRequest is the input to a recommendation computation.
type RecommendRequest struct {
	ProductURL   string
	Title        string
	Description  string
	CurrentScore *int
	Limit        int
}

// CompetitorLink remembers that a competitor was found for a base product.
type CompetitorLink struct {
	BaseURL       string    `json:"base_url"`
	CompetitorURL string    `json:"competitor_url"`
	Similarity    float64   `json:"similarity_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// CompetitorRef is an alternative product located by a competitor finder,
// before it has been analysed.
type CompetitorRef struct {
	URL    string
	Title  string
	Price  *float64
	Site   Site
	Source CandidateSource
}

// CompetitorOutcome classifies a competitor re-analysis.
type CompetitorOutcome int

// Competitor outcomes.
const (
	// CompetitorAnalysed means the competitor was fetched and scored.
	CompetitorAnalysed CompetitorOutcome = iota

	// CompetitorNoData means the page yielded no reviews; it contributes nothing.
	CompetitorNoData

	// CompetitorFailed means re-analysis failed; fallback values apply.
	CompetitorFailed
)

// String returns the outcome label used in logs and metrics.
func (o CompetitorOutcome) String() string {
	switch o {
	case CompetitorAnalysed:
		return "ok"
	case CompetitorNoData:
		return "skipped"
	case CompetitorFailed:
		return "fallback"
	default:
		return "unknown"
	}
}

// CompetitorResult is the per-item outcome of competitor re-analysis.
// A failure is kept as a value with Err set, never dropped.
type CompetitorResult struct {
	Ref        CompetitorRef
	Outcome    CompetitorOutcome
	Score      int
	Similarity float64
	Err        error
}

// Candidate converts the result into a ranking candidate. It reports false
// for results that contribute nothing.
func (r CompetitorResult) Candidate() (Candidate, bool) {
	if r.Outcome == CompetitorNoData {
		return Candidate{}, false
	}

	source := r.Ref.Source
	if source == "" {
		source = SourceSearch
	}
	sim := r.Similarity

	return Candidate{
		URL:        r.Ref.URL,
		Title:      r.Ref.Title,
		Price:      r.Ref.Price,
		Score:      r.Score,
		Similarity: &sim,
		Site:       r.Ref.Site,
		Source:     source,
	}, true
}
