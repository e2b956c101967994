package domain

import "time"

const unknownDescription = "Unknown"

// Recommendation defaults.
const (
	DefaultCacheExpiryDays       = 3
	DefaultMaxCompetitorsPerSite = 10
	DefaultSimilarityThreshold   = 0.1
	DefaultMinScoreImprovement   = 5
	DefaultEmbeddingDimensions   = 100
	DefaultRecommendationLimit   = 5
)

// NLPProvider identifies a service able to tag noun phrases and entities.
type NLPProvider string

// Available NLP providers.
const (
	// NLPProviderNone disables the NLP tier; the token fallback is used.
	NLPProviderNone NLPProvider = ""

	// NLPProviderOllama uses a local Ollama model as the tagger.
	NLPProviderOllama NLPProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p NLPProvider) IsValid() bool {
	switch p {
	case NLPProviderNone, NLPProviderOllama:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p NLPProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p NLPProvider) Description() string {
	switch p {
	case NLPProviderNone:
		return "None (token fallback)"
	case NLPProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// CacheBackend selects where recommendation results are cached.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendSQLite CacheBackend = "sqlite"
	CacheBackendRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendSQLite || b == CacheBackendRedis
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// RecommendationSettings holds the tunable recommendation constants.
type RecommendationSettings struct {
	// CacheExpiryDays is how long a cached result set stays valid.
	CacheExpiryDays int `validate:"min=1,max=365"`

	// MaxCompetitorsPerSite caps competitor lookups per request.
	MaxCompetitorsPerSite int `validate:"min=0,max=50"`

	// SimilarityThreshold excludes store matches at or below this cosine.
	SimilarityThreshold float64 `validate:"gte=0,lte=1"`

	// MinScoreImprovement is the margin a candidate must beat the current score by.
	MinScoreImprovement int `validate:"min=0,max=100"`

	// EmbeddingDimensions is the embedding target dimension D.
	EmbeddingDimensions int `validate:"min=1,max=4096"`

	// RecencyDays limits similarity search to recently stored products.
	RecencyDays int `validate:"min=1,max=3650"`

	// CompetitorWorkers bounds concurrent competitor re-analysis.
	CompetitorWorkers int `validate:"min=1,max=16"`

	// DefaultLimit is used when a request carries no limit.
	DefaultLimit int `validate:"min=1,max=50"`

	// Filter is an optional CEL expression every candidate must satisfy.
	Filter string
}

// CacheExpiry returns the cache validity window.
func (r RecommendationSettings) CacheExpiry() time.Duration {
	return time.Duration(r.CacheExpiryDays) * 24 * time.Hour
}

// RecencyWindow returns the similarity search recency window.
func (r RecommendationSettings) RecencyWindow() time.Duration {
	return time.Duration(r.RecencyDays) * 24 * time.Hour
}

// NLPSettings holds optional NLP tagger configuration.
type NLPSettings struct {
	// Provider is the tagger provider; empty disables the NLP tier.
	Provider NLPProvider

	// Model is the model name used for tagging.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string
}

// IsConfigured returns true if an NLP provider is selected.
func (n NLPSettings) IsConfigured() bool {
	return n.Provider != NLPProviderNone && n.Provider.IsValid()
}

// CacheSettings holds recommendation cache configuration.
type CacheSettings struct {
	Backend   CacheBackend
	RedisAddr string `validate:"required_if=Backend redis"`
	RedisDB   int    `validate:"min=0,max=15"`
}

// ScraperSettings holds web data source configuration.
type ScraperSettings struct {
	// RatePerSecond is the request rate allowed against product sites.
	RatePerSecond float64 `validate:"gt=0,lte=10"`

	// TimeoutSeconds bounds a single page fetch.
	TimeoutSeconds int `validate:"min=1,max=300"`

	// SelectorsFile optionally overrides the built-in CSS selector tables.
	SelectorsFile string

	// UserAgent is sent with every request.
	UserAgent string
}

// Timeout returns the fetch timeout as a duration.
func (s ScraperSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Recommendation holds the recommendation constants.
	Recommendation RecommendationSettings

	// NLP holds the optional tagger settings.
	NLP NLPSettings

	// Cache holds the result cache settings.
	Cache CacheSettings

	// Scraper holds the web data source settings.
	Scraper ScraperSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The NLP tier is left unconfigured; feature extraction uses the token fallback.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Recommendation: RecommendationSettings{
			CacheExpiryDays:       DefaultCacheExpiryDays,
			MaxCompetitorsPerSite: DefaultMaxCompetitorsPerSite,
			SimilarityThreshold:   DefaultSimilarityThreshold,
			MinScoreImprovement:   DefaultMinScoreImprovement,
			EmbeddingDimensions:   DefaultEmbeddingDimensions,
			RecencyDays:           DefaultCacheExpiryDays,
			CompetitorWorkers:     1,
			DefaultLimit:          DefaultRecommendationLimit,
		},
		NLP: NLPSettings{},
		Cache: CacheSettings{
			Backend: CacheBackendSQLite,
		},
		Scraper: ScraperSettings{
			RatePerSecond:  0.5,
			TimeoutSeconds: 20,
			UserAgent:      "verdict/1.0",
		},
	}
}

// DefaultNLPModels returns default models for each NLP provider.
func DefaultNLPModels() map[NLPProvider]string {
	return map[NLPProvider]string{
		NLPProviderOllama: "llama3.2",
	}
}
