package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCacheExpiryDays   = "recommendation.cache_expiry_days"
	keyMaxCompetitors    = "recommendation.max_competitors_per_site"
	keySimilarityThresh  = "recommendation.similarity_threshold"
	keyMinImprovement    = "recommendation.min_score_improvement"
	keyEmbeddingDims     = "recommendation.embedding_dimensions"
	keyRecencyDays       = "recommendation.recency_days"
	keyCompetitorWorkers = "recommendation.competitor_workers"
	keyDefaultLimit      = "recommendation.default_limit"
	keyFilter            = "recommendation.filter"
	keyNLPProvider       = "nlp.provider"
	keyNLPModel          = "nlp.model"
	keyNLPBaseURL        = "nlp.base_url"
	keyCacheBackend      = "cache.backend"
	keyRedisAddr         = "cache.redis_addr"
	keyRedisDB           = "cache.redis_db"
	keyScraperRate       = "scraper.rate_per_second"
	keyScraperTimeout    = "scraper.timeout_seconds"
	keySelectorsFile     = "scraper.selectors_file"
	keyUserAgent         = "scraper.user_agent"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every recognised key in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyCacheExpiryDays, kindInt},
	{keyMaxCompetitors, kindInt},
	{keySimilarityThresh, kindFloat},
	{keyMinImprovement, kindInt},
	{keyEmbeddingDims, kindInt},
	{keyRecencyDays, kindInt},
	{keyCompetitorWorkers, kindInt},
	{keyDefaultLimit, kindInt},
	{keyFilter, kindString},
	{keyNLPProvider, kindString},
	{keyNLPModel, kindString},
	{keyNLPBaseURL, kindString},
	{keyCacheBackend, kindString},
	{keyRedisAddr, kindString},
	{keyRedisDB, kindInt},
	{keyScraperRate, kindFloat},
	{keyScraperTimeout, kindInt},
	{keySelectorsFile, kindString},
	{keyUserAgent, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Get retrieves current application settings.
// Missing or unrecognised values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	dr := defaults.Recommendation

	settings := &domain.AppSettings{
		Recommendation: domain.RecommendationSettings{
			CacheExpiryDays:       s.getInt(keyCacheExpiryDays, dr.CacheExpiryDays),
			MaxCompetitorsPerSite: s.getInt(keyMaxCompetitors, dr.MaxCompetitorsPerSite),
			SimilarityThreshold:   s.getFloat(keySimilarityThresh, dr.SimilarityThreshold),
			MinScoreImprovement:   s.getInt(keyMinImprovement, dr.MinScoreImprovement),
			EmbeddingDimensions:   s.getInt(keyEmbeddingDims, dr.EmbeddingDimensions),
			RecencyDays:           s.getInt(keyRecencyDays, dr.RecencyDays),
			CompetitorWorkers:     s.getInt(keyCompetitorWorkers, dr.CompetitorWorkers),
			DefaultLimit:          s.getInt(keyDefaultLimit, dr.DefaultLimit),
			Filter:                s.configStore.GetString(keyFilter),
		},
		NLP: domain.NLPSettings{
			Provider: s.getNLPProvider(defaults.NLP.Provider),
			Model:    s.configStore.GetString(keyNLPModel),
			BaseURL:  s.configStore.GetString(keyNLPBaseURL),
		},
		Cache: domain.CacheSettings{
			Backend:   s.getCacheBackend(defaults.Cache.Backend),
			RedisAddr: s.configStore.GetString(keyRedisAddr),
			RedisDB:   s.getInt(keyRedisDB, defaults.Cache.RedisDB),
		},
		Scraper: domain.ScraperSettings{
			RatePerSecond:  s.getFloat(keyScraperRate, defaults.Scraper.RatePerSecond),
			TimeoutSeconds: s.getInt(keyScraperTimeout, defaults.Scraper.TimeoutSeconds),
			SelectorsFile:  s.configStore.GetString(keySelectorsFile),
			UserAgent:      s.getString(keyUserAgent, defaults.Scraper.UserAgent),
		},
	}

	if settings.NLP.IsConfigured() && settings.NLP.Model == "" {
		settings.NLP.Model = domain.DefaultNLPModels()[settings.NLP.Provider]
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	r := settings.Recommendation
	values := []struct {
		key   string
		value any
	}{
		{keyCacheExpiryDays, r.CacheExpiryDays},
		{keyMaxCompetitors, r.MaxCompetitorsPerSite},
		{keySimilarityThresh, r.SimilarityThreshold},
		{keyMinImprovement, r.MinScoreImprovement},
		{keyEmbeddingDims, r.EmbeddingDimensions},
		{keyRecencyDays, r.RecencyDays},
		{keyCompetitorWorkers, r.CompetitorWorkers},
		{keyDefaultLimit, r.DefaultLimit},
		{keyFilter, r.Filter},
		{keyNLPProvider, settings.NLP.Provider.String()},
		{keyNLPModel, settings.NLP.Model},
		{keyNLPBaseURL, settings.NLP.BaseURL},
		{keyCacheBackend, settings.Cache.Backend.String()},
		{keyRedisAddr, settings.Cache.RedisAddr},
		{keyRedisDB, settings.Cache.RedisDB},
		{keyScraperRate, settings.Scraper.RatePerSecond},
		{keyScraperTimeout, settings.Scraper.TimeoutSeconds},
		{keySelectorsFile, settings.Scraper.SelectorsFile},
		{keyUserAgent, settings.Scraper.UserAgent},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value according to the key's type and stores it. The
// resulting settings must still validate.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKind(key)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownSetting, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, domain.ErrInvalidInput)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%s expects a number: %w", key, domain.ErrInvalidInput)
		}
		parsed = f
	default:
		parsed = value
	}

	switch key {
	case keyNLPProvider:
		if !domain.NLPProvider(value).IsValid() {
			return fmt.Errorf("invalid nlp provider %q: %w", value, domain.ErrInvalidInput)
		}
	case keyCacheBackend:
		if !domain.CacheBackend(value).IsValid() {
			return fmt.Errorf("invalid cache backend %q: %w", value, domain.ErrInvalidInput)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	apply(settings, key, parsed)
	if err := s.check(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// apply copies a parsed value onto the matching settings field.
func apply(settings *domain.AppSettings, key string, value any) {
	r := &settings.Recommendation
	switch key {
	case keyCacheExpiryDays:
		r.CacheExpiryDays = value.(int)
	case keyMaxCompetitors:
		r.MaxCompetitorsPerSite = value.(int)
	case keySimilarityThresh:
		r.SimilarityThreshold = value.(float64)
	case keyMinImprovement:
		r.MinScoreImprovement = value.(int)
	case keyEmbeddingDims:
		r.EmbeddingDimensions = value.(int)
	case keyRecencyDays:
		r.RecencyDays = value.(int)
	case keyCompetitorWorkers:
		r.CompetitorWorkers = value.(int)
	case keyDefaultLimit:
		r.DefaultLimit = value.(int)
	case keyFilter:
		r.Filter = value.(string)
	case keyNLPProvider:
		settings.NLP.Provider = domain.NLPProvider(value.(string))
	case keyNLPModel:
		settings.NLP.Model = value.(string)
	case keyNLPBaseURL:
		settings.NLP.BaseURL = value.(string)
	case keyCacheBackend:
		settings.Cache.Backend = domain.CacheBackend(value.(string))
	case keyRedisAddr:
		settings.Cache.RedisAddr = value.(string)
	case keyRedisDB:
		settings.Cache.RedisDB = value.(int)
	case keyScraperRate:
		settings.Scraper.RatePerSecond = value.(float64)
	case keyScraperTimeout:
		settings.Scraper.TimeoutSeconds = value.(int)
	case keySelectorsFile:
		settings.Scraper.SelectorsFile = value.(string)
	case keyUserAgent:
		settings.Scraper.UserAgent = value.(string)
	}
}

// Keys returns the recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) check(settings *domain.AppSettings) error {
	if !settings.NLP.Provider.IsValid() {
		return fmt.Errorf("invalid nlp provider %q: %w", settings.NLP.Provider, domain.ErrInvalidInput)
	}
	if !settings.Cache.Backend.IsValid() {
		return fmt.Errorf("invalid cache backend %q: %w", settings.Cache.Backend, domain.ErrInvalidInput)
	}
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid setting %s (%s=%s): %w",
				verrs[0].Namespace(), verrs[0].Tag(), verrs[0].Param(), domain.ErrInvalidInput)
		}
		return fmt.Errorf("validating settings: %w", err)
	}
	return nil
}

func lookupKind(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getNLPProvider(defaultVal domain.NLPProvider) domain.NLPProvider {
	provider := domain.NLPProvider(s.configStore.GetString(keyNLPProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	val := s.configStore.GetString(keyCacheBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.CacheBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
